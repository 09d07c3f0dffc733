package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// MatchRequest asks for the top candidates of a job under a weighting
// preference. When CandidateIDs is empty the job's applicants are ranked.
type MatchRequest struct {
	JobID        string            `json:"job_id"`
	CandidateIDs []string          `json:"candidate_ids,omitempty"`
	Preference   models.Preference `json:"preference"`
	Limit        int               `json:"limit"`
}

// HandleMatch ranks a candidate pool against a job.
// (POST /api/v1/match)
func (s *Server) HandleMatch(c echo.Context) error {
	ctx := c.Request().Context()

	var req MatchRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("body", err.Error()))
	}
	if req.JobID == "" {
		return respondError(c, apperr.Validation("job_id", "required"))
	}

	pool, err := s.resolvePool(c, req)
	if err != nil {
		return respondError(c, err)
	}

	results, err := s.Engine.Rank(ctx, req.JobID, pool, req.Preference, req.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

// resolvePool builds the candidate pool for a match request: explicit
// snapshots for named candidates, the job's applicants otherwise.
func (s *Server) resolvePool(c echo.Context, req MatchRequest) ([]models.Candidate, error) {
	ctx := c.Request().Context()

	if len(req.CandidateIDs) == 0 {
		return s.Dir.ListApplicants(ctx, req.JobID)
	}

	pool := make([]models.Candidate, 0, len(req.CandidateIDs))
	for _, id := range req.CandidateIDs {
		cand, err := s.Dir.GetCandidate(ctx, id)
		if err != nil {
			return nil, err
		}
		pool = append(pool, *cand)
	}
	return pool, nil
}
