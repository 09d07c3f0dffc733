package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/auth"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/pipeline"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// CreateWorkflowRequest seeds a new workflow with the entrants of phase 0.
type CreateWorkflowRequest struct {
	JobID       string          `json:"job_id"`
	Candidates  []string        `json:"candidates"`
	Priority    models.Priority `json:"priority"`
	Description string          `json:"description"`
}

// UpdateWorkflowRequest atomically replaces the full phase chain.
// MutatedPhase, when set, picks the phase the follow-up notifications
// target; otherwise the last phase is used.
type UpdateWorkflowRequest struct {
	Phases       []models.Phase  `json:"phases"`
	Priority     models.Priority `json:"priority"`
	Description  string          `json:"description"`
	MutatedPhase *int            `json:"mutated_phase,omitempty"`
}

// SetStatusRequest moves the workflow through its status machine.
type SetStatusRequest struct {
	Status models.WorkflowStatus `json:"status"`
}

func actorOr401(c echo.Context) (models.Actor, error) {
	actor, ok := auth.ActorFrom(c.Request().Context())
	if !ok {
		return models.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "no authenticated actor")
	}
	return actor, nil
}

// HandleListWorkflows returns a list of all workflows.
// (GET /api/v1/workflows)
func (s *Server) HandleListWorkflows(c echo.Context) error {
	workflows, err := s.Workflows.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, workflows)
}

// HandleGetWorkflow returns one workflow with its full phase chain.
// (GET /api/v1/workflows/:id)
func (s *Server) HandleGetWorkflow(c echo.Context) error {
	wf, err := s.Workflows.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// HandleCreateWorkflow creates a workflow seeded with phase 0 entrants.
// (POST /api/v1/workflows)
func (s *Server) HandleCreateWorkflow(c echo.Context) error {
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req CreateWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("body", err.Error()))
	}

	wf, err := s.Workflows.Create(c.Request().Context(), actor, req.JobID, req.Candidates, req.Priority, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, wf)
}

// HandleUpdateWorkflow replaces the workflow's phase chain atomically.
// (PUT /api/v1/workflows/:id)
func (s *Server) HandleUpdateWorkflow(c echo.Context) error {
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req UpdateWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("body", err.Error()))
	}

	mutated := pipeline.NoPhase
	if req.MutatedPhase != nil {
		mutated = *req.MutatedPhase
	}

	wf, err := s.Workflows.Update(c.Request().Context(), actor, c.Param("id"), req.Phases, req.Priority, req.Description, mutated)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// HandleSetWorkflowStatus updates the workflow-level status.
// (PATCH /api/v1/workflows/:id/status)
func (s *Server) HandleSetWorkflowStatus(c echo.Context) error {
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	var req SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("body", err.Error()))
	}

	wf, err := s.Workflows.SetStatus(c.Request().Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// HandleDeleteWorkflow removes a workflow. Elevated privilege only.
// (DELETE /api/v1/workflows/:id)
func (s *Server) HandleDeleteWorkflow(c echo.Context) error {
	actor, err := actorOr401(c)
	if err != nil {
		return err
	}

	if err := s.Workflows.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
