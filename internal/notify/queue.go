package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// Queue holds the pending notifications of a single workflow. Exactly one
// job is active (previewed, awaiting confirm or cancel) at a time; Next
// re-returns the active job until it is resolved. While a confirmed send is
// in flight the job can no longer be cancelled.
type Queue struct {
	mu        sync.Mutex
	pending   []*models.NotificationJob
	active    *models.NotificationJob
	inflight  bool
	transport Transport
	logger    *zap.Logger
}

// NewQueue creates an empty queue using the given transport.
func NewQueue(transport Transport, logger *zap.Logger) *Queue {
	return &Queue{transport: transport, logger: logger}
}

// EnqueueForCreate schedules the notifications that follow a workflow
// creation: a candidate notice for phase 0 when it has candidates, then a
// recruiter notice when the job has recruiters. With recruiters but no
// candidates only the recruiter notice is queued.
func (q *Queue) EnqueueForCreate(wf *models.Workflow, recruiters []models.Recruiter) {
	phase := wf.Phases[0]
	if len(phase.Candidates) > 0 {
		q.push(newJob(models.NotificationCandidatePhase, wf, phase, recruiters))
	}
	if len(recruiters) > 0 {
		q.push(newJob(models.NotificationRecruiterPhase, wf, phase, recruiters))
	}
}

// EnqueueForUpdate schedules a candidate and a recruiter notice for the
// mutated phase. A negative index means no particular phase was named and
// targets the last phase; an index beyond the chain is a ValidationError.
func (q *Queue) EnqueueForUpdate(wf *models.Workflow, recruiters []models.Recruiter, mutatedPhase int) error {
	if mutatedPhase >= len(wf.Phases) {
		return apperr.ValidationAt(mutatedPhase, "phase_index", fmt.Sprintf("index out of range, chain has %d phases", len(wf.Phases)))
	}
	phase := *wf.LastPhase()
	if mutatedPhase >= 0 {
		phase = wf.Phases[mutatedPhase]
	}
	if len(phase.Candidates) > 0 {
		q.push(newJob(models.NotificationCandidatePhase, wf, phase, recruiters))
	}
	if len(recruiters) > 0 {
		q.push(newJob(models.NotificationRecruiterPhase, wf, phase, recruiters))
	}
	return nil
}

// EnqueueJobCreation schedules a job-level creation announcement for the
// recruiters of the job.
func (q *Queue) EnqueueJobCreation(wf *models.Workflow, recruiters []models.Recruiter) {
	if len(recruiters) == 0 {
		return
	}
	q.push(newJob(models.NotificationRecruiterJobCreate, wf, wf.Phases[0], recruiters))
}

// Next returns the job awaiting human review, promoting the head of the
// queue when nothing is active. It returns nil when the queue is drained.
func (q *Queue) Next() *models.NotificationJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active != nil {
		return q.active
	}
	if len(q.pending) == 0 {
		return nil
	}
	q.active = q.pending[0]
	q.pending = q.pending[1:]
	return q.active
}

// Preview renders the email for a job without sending anything.
func (q *Queue) Preview(ctx context.Context, job *models.NotificationJob) (*Message, error) {
	msg, err := q.transport.Render(ctx, string(job.Type), job)
	if err != nil {
		return nil, apperr.Transport("render notification", err)
	}
	return msg, nil
}

// Confirm sends the active job to the given recipients. Zero recipients is
// a ValidationError and a transport failure a TransportError; in both cases
// the job stays active so the caller can retry. A job cancelled before its
// send starts is never sent; once the send is in flight the job can no
// longer be cancelled. Only a successful send advances the queue.
func (q *Queue) Confirm(ctx context.Context, job *models.NotificationJob, recipients []string) (*SendResult, error) {
	q.mu.Lock()
	if q.active == nil || job == nil || q.active.ID != job.ID {
		q.mu.Unlock()
		return nil, apperr.Validation("notification", "job is not the active notification")
	}
	active := q.active
	q.mu.Unlock()

	if len(recipients) == 0 {
		return nil, apperr.Validation("recipients", "at least one recipient is required")
	}

	msg, err := q.transport.Render(ctx, string(active.Type), active)
	if err != nil {
		return nil, apperr.Transport("render notification", err)
	}

	// a Cancel may have landed while rendering; a discarded job is never
	// sent. Marking the job in flight keeps Cancel out until the send
	// resolves.
	q.mu.Lock()
	if q.active == nil || q.active.ID != active.ID {
		q.mu.Unlock()
		return nil, apperr.Validation("notification", "job was cancelled before sending")
	}
	q.inflight = true
	q.mu.Unlock()

	sendErr := q.transport.Send(ctx, recipients, msg.Subject, msg.HTML)

	q.mu.Lock()
	q.inflight = false
	if sendErr == nil && q.active != nil && q.active.ID == active.ID {
		q.active = nil
	}
	q.mu.Unlock()

	if sendErr != nil {
		return nil, apperr.Transport("send notification", sendErr)
	}

	q.logger.Info("notification sent",
		zap.String("workflow_id", active.WorkflowID),
		zap.String("type", string(active.Type)),
		zap.Int("recipients", len(recipients)),
	)
	return &SendResult{Sent: len(recipients), Recipients: recipients}, nil
}

// Cancel discards the active job without sending and advances the queue.
// Safe to call at any time before Confirm starts sending; once the send is
// in flight the job is no longer cancellable and Cancel fails instead of
// pretending the email was withheld.
func (q *Queue) Cancel(job *models.NotificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active == nil || job == nil || q.active.ID != job.ID {
		return apperr.Validation("notification", "job is not the active notification")
	}
	if q.inflight {
		return apperr.Validation("notification", "send already in progress")
	}
	q.active = nil
	return nil
}

// Active returns the job awaiting confirm or cancel, or nil. Unlike Next it
// never promotes a pending job.
func (q *Queue) Active() *models.NotificationJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Len returns the number of unresolved jobs, the active one included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	if q.active != nil {
		n++
	}
	return n
}

func (q *Queue) push(job *models.NotificationJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, job)
}

func newJob(kind models.NotificationType, wf *models.Workflow, phase models.Phase, recruiters []models.Recruiter) *models.NotificationJob {
	return &models.NotificationJob{
		ID:           uuid.New().String(),
		Type:         kind,
		JobID:        wf.JobID,
		WorkflowID:   wf.ID,
		Phase:        phase,
		CandidateIDs: append([]string(nil), phase.Candidates...),
		Recruiters:   recruiters,
	}
}

// Center is the registry of per-workflow queues. The single-flight rule is
// per workflow: two workflows progress their queues independently.
type Center struct {
	mu        sync.Mutex
	queues    map[string]*Queue
	transport Transport
	logger    *zap.Logger
}

// NewCenter creates an empty notification center.
func NewCenter(transport Transport, logger *zap.Logger) *Center {
	return &Center{
		queues:    make(map[string]*Queue),
		transport: transport,
		logger:    logger,
	}
}

// ForWorkflow returns the queue of the given workflow, creating it on
// first use.
func (c *Center) ForWorkflow(workflowID string) *Queue {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queues[workflowID]
	if !ok {
		q = NewQueue(c.transport, c.logger)
		c.queues[workflowID] = q
	}
	return q
}

// Drop discards a workflow's queue, pending jobs included. Called when the
// workflow itself is deleted.
func (c *Center) Drop(workflowID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.queues, workflowID)
}
