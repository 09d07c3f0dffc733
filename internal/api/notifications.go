package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/notify"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// NotificationPreview couples a queued job with its rendered email so a
// human can review recipients and content before anything is sent.
type NotificationPreview struct {
	Job     *models.NotificationJob `json:"job"`
	Preview *notify.Message         `json:"preview"`
}

// ConfirmRequest approves the active notification for sending.
type ConfirmRequest struct {
	NotificationID string   `json:"notification_id"`
	Recipients     []string `json:"recipients"`
}

// CancelRequest discards the active notification without sending.
type CancelRequest struct {
	NotificationID string `json:"notification_id"`
}

// HandleNextNotification returns the notification awaiting review, with
// its rendered preview. Repeated calls return the same job until it is
// confirmed or cancelled.
// (GET /api/v1/workflows/:id/notifications/next)
func (s *Server) HandleNextNotification(c echo.Context) error {
	queue := s.Workflows.Queue(c.Param("id"))

	job := queue.Next()
	if job == nil {
		return c.NoContent(http.StatusNoContent)
	}

	preview, err := queue.Preview(c.Request().Context(), job)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, NotificationPreview{Job: job, Preview: preview})
}

// HandleConfirmNotification sends the active notification to the given
// recipients. Failures leave the job active so the caller can retry.
// (POST /api/v1/workflows/:id/notifications/confirm)
func (s *Server) HandleConfirmNotification(c echo.Context) error {
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("body", err.Error()))
	}

	queue := s.Workflows.Queue(c.Param("id"))
	active := queue.Active()
	if active == nil || active.ID != req.NotificationID {
		return respondError(c, apperr.Validation("notification_id", "job is not the active notification"))
	}

	result, err := queue.Confirm(c.Request().Context(), active, req.Recipients)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// HandleCancelNotification discards the active notification.
// (POST /api/v1/workflows/:id/notifications/cancel)
func (s *Server) HandleCancelNotification(c echo.Context) error {
	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("body", err.Error()))
	}

	queue := s.Workflows.Queue(c.Param("id"))
	active := queue.Active()
	if active == nil || active.ID != req.NotificationID {
		return respondError(c, apperr.Validation("notification_id", "job is not the active notification"))
	}

	if err := queue.Cancel(active); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
