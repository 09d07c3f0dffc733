package repository

import (
	"context"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// WorkflowStore is the persistence port for workflow aggregates. Save
// persists the whole aggregate (workflow row, phases, memberships, custom
// fields) atomically: a workflow is never partially written.
type WorkflowStore interface {
	// Save inserts or fully replaces a workflow in one transaction.
	Save(ctx context.Context, workflow *models.Workflow) error
	// Load retrieves a workflow with its complete phase chain.
	Load(ctx context.Context, id string) (*models.Workflow, error)
	// List returns all workflows, newest first.
	List(ctx context.Context) ([]*models.Workflow, error)
	// Delete removes a workflow and everything hanging off it.
	Delete(ctx context.Context, id string) error
}
