// Package api contains the HTTP handlers for the hiring-pipeline service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
)

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK).
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "staffanchor-pipeline",
		Version:   "1.0.0",
	})
}

// ProblemDetails represents an RFC 7807 Problem Details response.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// respondError maps the error taxonomy onto an RFC 7807 response. The
// detail always names the phase index or field responsible so the caller
// can correct the input without trial and error.
func respondError(c echo.Context, err error) error {
	status, title := classify(err)
	problem := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: err.Error(),
	}
	body, merr := json.Marshal(problem)
	if merr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode problem response")
	}
	return c.Blob(status, "application/problem+json", body)
}

func classify(err error) (int, string) {
	var (
		ve *apperr.ValidationError
		ie *apperr.InvariantError
		fe *apperr.ForbiddenError
		ne *apperr.NotFoundError
		te *apperr.TransportError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "Validation failed"
	case errors.As(err, &ie):
		return http.StatusUnprocessableEntity, "Invariant violated"
	case errors.As(err, &fe):
		return http.StatusForbidden, "Forbidden"
	case errors.As(err, &ne):
		return http.StatusNotFound, "Not found"
	case errors.As(err, &te):
		return http.StatusBadGateway, "Upstream failure"
	}
	return http.StatusInternalServerError, "Internal error"
}
