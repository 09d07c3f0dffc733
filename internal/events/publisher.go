// Package events publishes workflow lifecycle events to redis so sibling
// services (analytics, audit) can react. Publishing is best-effort: a
// failed publish never fails the workflow mutation that triggered it.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channel = "EVT_WORKFLOW"

// Event types published after successful workflow persistence.
const (
	WorkflowCreated = "WORKFLOW_CREATED"
	WorkflowUpdated = "WORKFLOW_UPDATED"
	WorkflowDeleted = "WORKFLOW_DELETED"
)

// Publisher writes lifecycle events to a redis channel.
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewPublisher creates a Publisher. A nil redis client disables publishing
// entirely, which keeps local development free of a redis dependency.
func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: logger}
}

// Publish emits one event. Failures are logged and swallowed.
func (p *Publisher) Publish(ctx context.Context, eventType, workflowID, jobID string) {
	if p == nil || p.rdb == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"type":        eventType,
		"workflow_id": workflowID,
		"job_id":      jobID,
	})
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.logger.Warn("publish workflow event failed",
			zap.String("type", eventType),
			zap.String("workflow_id", workflowID),
			zap.Error(err),
		)
	}
}
