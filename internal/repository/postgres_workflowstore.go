package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// Schema is the DDL for the workflow tables, applied by the seed command
// and the integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS workflows (
	id UUID PRIMARY KEY,
	job_id TEXT NOT NULL,
	priority TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	created_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS workflow_phases (
	workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
	phase_number INT NOT NULL,
	phase_name TEXT NOT NULL,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY (workflow_id, phase_number)
);
CREATE TABLE IF NOT EXISTS phase_candidates (
	workflow_id UUID NOT NULL,
	phase_number INT NOT NULL,
	candidate_id TEXT NOT NULL,
	candidate_status TEXT NOT NULL DEFAULT 'New',
	PRIMARY KEY (workflow_id, phase_number, candidate_id),
	FOREIGN KEY (workflow_id, phase_number) REFERENCES workflow_phases(workflow_id, phase_number) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS phase_custom_fields (
	workflow_id UUID NOT NULL,
	phase_number INT NOT NULL,
	position INT NOT NULL,
	field_key TEXT NOT NULL,
	field_value TEXT NOT NULL,
	PRIMARY KEY (workflow_id, phase_number, position),
	FOREIGN KEY (workflow_id, phase_number) REFERENCES workflow_phases(workflow_id, phase_number) ON DELETE CASCADE
);
`

// PostgresWorkflowStore is a PostgreSQL implementation of the
// WorkflowStore interface.
type PostgresWorkflowStore struct {
	db *pgxpool.Pool
}

// NewPostgresWorkflowStore creates a new PostgresWorkflowStore.
func NewPostgresWorkflowStore(db *pgxpool.Pool) *PostgresWorkflowStore {
	return &PostgresWorkflowStore{db: db}
}

// Save persists the whole aggregate in one transaction: the workflow row
// is upserted and the phase rows are replaced wholesale. Either everything
// commits or nothing does, so a workflow can never be partially written.
func (s *PostgresWorkflowStore) Save(ctx context.Context, wf *models.Workflow) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperr.Transport("begin workflow save", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workflows (id, job_id, priority, description, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			priority = EXCLUDED.priority,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		wf.ID, wf.JobID, wf.Priority, wf.Description, wf.Status, wf.CreatedBy, wf.CreatedAt, wf.UpdatedAt)
	if err != nil {
		return apperr.Transport("save workflow", err)
	}

	// replace the phase chain wholesale; cascades clear memberships and
	// custom fields
	if _, err := tx.Exec(ctx, `DELETE FROM workflow_phases WHERE workflow_id = $1`, wf.ID); err != nil {
		return apperr.Transport("clear workflow phases", err)
	}

	for _, phase := range wf.Phases {
		_, err = tx.Exec(ctx, `
			INSERT INTO workflow_phases (workflow_id, phase_number, phase_name, type, status)
			VALUES ($1, $2, $3, $4, $5)`,
			wf.ID, phase.PhaseNumber, phase.PhaseName, phase.Type, phase.Status)
		if err != nil {
			return apperr.Transport("save workflow phase", err)
		}
		for _, candidateID := range phase.Candidates {
			status := phase.CandidateStatuses[candidateID]
			if status == "" {
				status = models.CandidateStatusNew
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO phase_candidates (workflow_id, phase_number, candidate_id, candidate_status)
				VALUES ($1, $2, $3, $4)`,
				wf.ID, phase.PhaseNumber, candidateID, status)
			if err != nil {
				return apperr.Transport("save phase candidate", err)
			}
		}
		for pos, field := range phase.CustomFields {
			_, err = tx.Exec(ctx, `
				INSERT INTO phase_custom_fields (workflow_id, phase_number, position, field_key, field_value)
				VALUES ($1, $2, $3, $4, $5)`,
				wf.ID, phase.PhaseNumber, pos, field.Key, field.Value)
			if err != nil {
				return apperr.Transport("save phase custom field", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Transport("commit workflow save", err)
	}
	return nil
}

// Load retrieves a workflow with its complete phase chain.
func (s *PostgresWorkflowStore) Load(ctx context.Context, id string) (*models.Workflow, error) {
	var wf models.Workflow
	err := s.db.QueryRow(ctx, `
		SELECT id, job_id, priority, description, status, created_by, created_at, updated_at
		FROM workflows WHERE id = $1`, id).
		Scan(&wf.ID, &wf.JobID, &wf.Priority, &wf.Description, &wf.Status, &wf.CreatedBy, &wf.CreatedAt, &wf.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("workflow", id)
		}
		return nil, apperr.Transport("load workflow", err)
	}

	phases, err := s.loadPhases(ctx, id)
	if err != nil {
		return nil, err
	}
	wf.Phases = phases
	return &wf, nil
}

// List returns all workflows, newest first.
func (s *PostgresWorkflowStore) List(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, job_id, priority, description, status, created_by, created_at, updated_at
		FROM workflows ORDER BY updated_at DESC`)
	if err != nil {
		return nil, apperr.Transport("list workflows", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0)
	for rows.Next() {
		var wf models.Workflow
		if err := rows.Scan(&wf.ID, &wf.JobID, &wf.Priority, &wf.Description, &wf.Status, &wf.CreatedBy, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
			return nil, apperr.Transport("scan workflow", err)
		}
		workflows = append(workflows, &wf)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Transport("list workflows", err)
	}

	for _, wf := range workflows {
		phases, err := s.loadPhases(ctx, wf.ID)
		if err != nil {
			return nil, err
		}
		wf.Phases = phases
	}
	return workflows, nil
}

// Delete removes a workflow; phase rows cascade.
func (s *PostgresWorkflowStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return apperr.Transport("delete workflow", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("workflow", id)
	}
	return nil
}

func (s *PostgresWorkflowStore) loadPhases(ctx context.Context, workflowID string) ([]models.Phase, error) {
	rows, err := s.db.Query(ctx, `
		SELECT phase_number, phase_name, type, status
		FROM workflow_phases WHERE workflow_id = $1 ORDER BY phase_number`, workflowID)
	if err != nil {
		return nil, apperr.Transport("load workflow phases", err)
	}
	defer rows.Close()

	phases := make([]models.Phase, 0)
	for rows.Next() {
		var p models.Phase
		if err := rows.Scan(&p.PhaseNumber, &p.PhaseName, &p.Type, &p.Status); err != nil {
			return nil, apperr.Transport("scan workflow phase", err)
		}
		p.Candidates = []string{}
		p.CandidateStatuses = map[string]string{}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Transport("load workflow phases", err)
	}

	byNumber := make(map[int]*models.Phase, len(phases))
	for i := range phases {
		byNumber[phases[i].PhaseNumber] = &phases[i]
	}

	crows, err := s.db.Query(ctx, `
		SELECT phase_number, candidate_id, candidate_status
		FROM phase_candidates WHERE workflow_id = $1 ORDER BY phase_number, candidate_id`, workflowID)
	if err != nil {
		return nil, apperr.Transport("load phase candidates", err)
	}
	defer crows.Close()
	for crows.Next() {
		var (
			num        int
			id, status string
		)
		if err := crows.Scan(&num, &id, &status); err != nil {
			return nil, apperr.Transport("scan phase candidate", err)
		}
		if p, ok := byNumber[num]; ok {
			p.Candidates = append(p.Candidates, id)
			p.CandidateStatuses[id] = status
		}
	}
	if err := crows.Err(); err != nil {
		return nil, apperr.Transport("load phase candidates", err)
	}

	frows, err := s.db.Query(ctx, `
		SELECT phase_number, field_key, field_value
		FROM phase_custom_fields WHERE workflow_id = $1 ORDER BY phase_number, position`, workflowID)
	if err != nil {
		return nil, apperr.Transport("load phase custom fields", err)
	}
	defer frows.Close()
	for frows.Next() {
		var (
			num        int
			key, value string
		)
		if err := frows.Scan(&num, &key, &value); err != nil {
			return nil, apperr.Transport("scan phase custom field", err)
		}
		if p, ok := byNumber[num]; ok {
			p.CustomFields = append(p.CustomFields, models.CustomField{Key: key, Value: value})
		}
	}
	if err := frows.Err(); err != nil {
		return nil, apperr.Transport("load phase custom fields", err)
	}

	return phases, nil
}

var _ WorkflowStore = (*PostgresWorkflowStore)(nil)
