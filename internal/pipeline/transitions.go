// Workflow-level status machine, independent of per-phase statuses.
//
// Valid status graph:
//
//	Active ──► Completed
//	Active ──► On Hold
//	Active ──► Cancelled
//
// and every status may return to Active. There are no terminal states: a
// workflow status is a freely re-editable enum, not a one-way flow.
package pipeline

import (
	"fmt"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// validStatusTransitions lists every allowed (from → to) pair.
var validStatusTransitions = map[models.WorkflowStatus][]models.WorkflowStatus{
	models.WorkflowStatusActive:    {models.WorkflowStatusCompleted, models.WorkflowStatusOnHold, models.WorkflowStatusCancelled},
	models.WorkflowStatusCompleted: {models.WorkflowStatusActive},
	models.WorkflowStatusOnHold:    {models.WorkflowStatusActive},
	models.WorkflowStatusCancelled: {models.WorkflowStatusActive},
}

// ParseWorkflowStatus converts a raw string to a WorkflowStatus, returning
// an error for unknown values.
func ParseWorkflowStatus(s string) (models.WorkflowStatus, error) {
	st := models.WorkflowStatus(s)
	switch st {
	case models.WorkflowStatusActive, models.WorkflowStatusCompleted, models.WorkflowStatusOnHold, models.WorkflowStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown workflow status %q", s)
}

// ParsePriority converts a raw string to a Priority, returning an error
// for unknown values.
func ParsePriority(s string) (models.Priority, error) {
	p := models.Priority(s)
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// IsStatusTransitionAllowed returns true when moving from → to is permitted
// by the state machine. Staying in place is always allowed.
func IsStatusTransitionAllowed(from, to models.WorkflowStatus) bool {
	if from == to {
		return true
	}
	for _, s := range validStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
