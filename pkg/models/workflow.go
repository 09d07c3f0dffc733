package models

import (
	"time"
)

// PhaseType classifies what happens to candidates during a phase.
type PhaseType string

const (
	PhaseTypeInterviewVideo  PhaseType = "interview-video"
	PhaseTypeInterviewCall   PhaseType = "interview-call"
	PhaseTypeInterviewOnsite PhaseType = "interview-onsite"
	PhaseTypeTestOnline      PhaseType = "test-online"
	PhaseTypeTestOffline     PhaseType = "test-offline"
	PhaseTypeCustom          PhaseType = "custom"
)

// PhaseStatus is the lifecycle state of a single phase.
type PhaseStatus string

const (
	PhaseStatusActive    PhaseStatus = "Active"
	PhaseStatusCompleted PhaseStatus = "Completed"
	PhaseStatusOnHold    PhaseStatus = "On Hold"
	PhaseStatusCancelled PhaseStatus = "Cancelled"
)

// WorkflowStatus is the lifecycle state of the workflow as a whole,
// independent of the statuses of its phases.
type WorkflowStatus string

const (
	WorkflowStatusActive    WorkflowStatus = "Active"
	WorkflowStatusCompleted WorkflowStatus = "Completed"
	WorkflowStatusOnHold    WorkflowStatus = "On Hold"
	WorkflowStatusCancelled WorkflowStatus = "Cancelled"
)

// Priority ranks a workflow for recruiter attention.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// CandidateStatusNew is the status assigned to every candidate when it
// first enters a phase.
const CandidateStatusNew = "New"

// CustomField is a single key/value pair attached to a phase. Pairs are
// ordered; pairs with an empty key or value are dropped before persistence.
type CustomField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Phase is one step of a hiring pipeline. PhaseNumber and PhaseName are
// derived from chain position and recomputed on every structural change.
type Phase struct {
	PhaseNumber       int               `json:"phase_number"`
	PhaseName         string            `json:"phase_name"`
	Type              PhaseType         `json:"type"`
	Status            PhaseStatus       `json:"status"`
	Candidates        []string          `json:"candidates"`
	CandidateStatuses map[string]string `json:"candidate_statuses,omitempty"`
	CustomFields      []CustomField     `json:"custom_fields,omitempty"`
}

// Workflow is the hiring pipeline for one job: an ordered phase chain plus
// workflow-level metadata. Phases always has length >= 1 and for every
// i > 0 the candidates of phase i are a subset of the candidates of
// phase i-1.
type Workflow struct {
	ID          string         `json:"id"`
	JobID       string         `json:"job_id"`
	Phases      []Phase        `json:"phases"`
	Priority    Priority       `json:"priority"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// LastPhase returns the final phase of the chain. It panics on an empty
// chain, which a validated workflow can never carry.
func (w *Workflow) LastPhase() *Phase {
	return &w.Phases[len(w.Phases)-1]
}
