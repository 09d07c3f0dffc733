package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/directory"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/events"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/notify"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/repository"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// NoPhase signals "no specific phase was mutated" to Update; the
// notification then targets the last phase.
const NoPhase = apperr.NoPhase

// Service is the workflow aggregate: it owns workflow-level metadata and
// the phase chain, and is the only writer of workflow state. Every
// mutation is authorized against the explicit actor, validated in full,
// persisted atomically and only then followed by notifications.
type Service struct {
	store    repository.WorkflowStore
	dir      directory.Directory
	notifier *notify.Center
	events   *events.Publisher
	logger   *zap.Logger
}

// NewService wires the workflow aggregate.
func NewService(store repository.WorkflowStore, dir directory.Directory, notifier *notify.Center, publisher *events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		dir:      dir,
		notifier: notifier,
		events:   publisher,
		logger:   logger,
	}
}

// Create builds a new workflow for the job, seeding phase 0 with the given
// candidates. A workflow cannot start with zero entrants.
func (s *Service) Create(ctx context.Context, actor models.Actor, jobID string, initialCandidates []string, priority models.Priority, description string) (*models.Workflow, error) {
	if jobID == "" {
		return nil, apperr.Validation("job_id", "required")
	}
	if _, err := ParsePriority(string(priority)); err != nil {
		return nil, apperr.Validation("priority", err.Error())
	}

	chain := NewChain(initialCandidates)
	if len(chain[0].Candidates) == 0 {
		return nil, apperr.ValidationAt(0, "candidates", "a workflow cannot start with zero entrants")
	}

	// the job must exist before anything is persisted
	if _, err := s.dir.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wf := &models.Workflow{
		ID:          uuid.New().String(),
		JobID:       jobID,
		Phases:      chain,
		Priority:    priority,
		Description: description,
		Status:      models.WorkflowStatusActive,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Save(ctx, wf); err != nil {
		return nil, err
	}

	s.logger.Info("workflow created",
		zap.String("workflow_id", wf.ID),
		zap.String("job_id", jobID),
		zap.String("actor", actor.ID),
		zap.Int("entrants", len(chain[0].Candidates)),
	)

	s.afterCreate(ctx, wf)
	return wf, nil
}

// Update atomically replaces the workflow's phase chain, priority and
// description. Either the whole new chain validates and persists, or the
// prior state is retained untouched. mutatedPhase picks the phase the
// follow-up notifications target; NoPhase defaults to the last phase.
func (s *Service) Update(ctx context.Context, actor models.Actor, workflowID string, phases []models.Phase, priority models.Priority, description string, mutatedPhase int) (*models.Workflow, error) {
	existing, err := s.store.Load(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if !actor.CanEdit(existing.CreatedBy) {
		return nil, apperr.Forbidden(fmt.Sprintf("actor %s may only update workflows they created", actor.ID))
	}
	if _, err := ParsePriority(string(priority)); err != nil {
		return nil, apperr.Validation("priority", err.Error())
	}

	// full validation up front: nothing is written unless the complete
	// replacement chain is sound
	chain := Normalize(phases)
	if err := Validate(chain); err != nil {
		return nil, err
	}
	if len(chain[0].Candidates) == 0 {
		return nil, apperr.ValidationAt(0, "candidates", "a workflow cannot start with zero entrants")
	}
	if mutatedPhase != NoPhase && (mutatedPhase < 0 || mutatedPhase >= len(chain)) {
		return nil, apperr.ValidationAt(mutatedPhase, "mutated_phase", fmt.Sprintf("index out of range, chain has %d phases", len(chain)))
	}

	updated := &models.Workflow{
		ID:          existing.ID,
		JobID:       existing.JobID,
		Phases:      chain,
		Priority:    priority,
		Description: description,
		Status:      existing.Status,
		CreatedBy:   existing.CreatedBy,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.store.Save(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("workflow updated",
		zap.String("workflow_id", updated.ID),
		zap.String("actor", actor.ID),
		zap.Int("phases", len(chain)),
	)

	s.afterUpdate(ctx, updated, mutatedPhase)
	return updated, nil
}

// SetStatus moves the workflow through its status machine.
func (s *Service) SetStatus(ctx context.Context, actor models.Actor, workflowID string, status models.WorkflowStatus) (*models.Workflow, error) {
	wf, err := s.store.Load(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if !actor.CanEdit(wf.CreatedBy) {
		return nil, apperr.Forbidden(fmt.Sprintf("actor %s may only update workflows they created", actor.ID))
	}
	if _, err := ParseWorkflowStatus(string(status)); err != nil {
		return nil, apperr.Validation("status", err.Error())
	}
	if !IsStatusTransitionAllowed(wf.Status, status) {
		return nil, apperr.Validation("status", fmt.Sprintf("cannot move from %q to %q", wf.Status, status))
	}

	wf.Status = status
	wf.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// Get loads one workflow.
func (s *Service) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return s.store.Load(ctx, id)
}

// List returns all workflows.
func (s *Service) List(ctx context.Context) ([]*models.Workflow, error) {
	return s.store.List(ctx)
}

// Delete removes a workflow. Deletion always requires elevated privilege,
// creator or not.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.Elevated {
		return apperr.Forbidden("workflow deletion requires elevated privilege")
	}
	wf, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.Drop(id)
	s.events.Publish(ctx, events.WorkflowDeleted, id, wf.JobID)
	s.logger.Info("workflow deleted", zap.String("workflow_id", id), zap.String("actor", actor.ID))
	return nil
}

// Queue exposes the workflow's notification queue for the API layer.
func (s *Service) Queue(workflowID string) *notify.Queue {
	return s.notifier.ForWorkflow(workflowID)
}

// afterCreate queues the creation notifications and publishes the
// lifecycle event. Recruiter lookup failures are non-fatal: the workflow
// is already saved and the recruiter notice simply has no audience.
func (s *Service) afterCreate(ctx context.Context, wf *models.Workflow) {
	recruiters := s.recruiters(ctx, wf.JobID)
	s.notifier.ForWorkflow(wf.ID).EnqueueForCreate(wf, recruiters)
	s.events.Publish(ctx, events.WorkflowCreated, wf.ID, wf.JobID)
}

func (s *Service) afterUpdate(ctx context.Context, wf *models.Workflow, mutatedPhase int) {
	recruiters := s.recruiters(ctx, wf.JobID)
	if err := s.notifier.ForWorkflow(wf.ID).EnqueueForUpdate(wf, recruiters, mutatedPhase); err != nil {
		s.logger.Warn("enqueue update notifications failed", zap.String("workflow_id", wf.ID), zap.Error(err))
	}
	s.events.Publish(ctx, events.WorkflowUpdated, wf.ID, wf.JobID)
}

func (s *Service) recruiters(ctx context.Context, jobID string) []models.Recruiter {
	recruiters, err := s.dir.ListRecruiters(ctx, jobID)
	if err != nil {
		s.logger.Warn("recruiter lookup failed", zap.String("job_id", jobID), zap.Error(err))
		return nil
	}
	return recruiters
}
