package models

// NotificationType identifies the template a queued notification renders.
type NotificationType string

const (
	NotificationCandidatePhase     NotificationType = "candidate-phase-notice"
	NotificationRecruiterPhase     NotificationType = "recruiter-phase-notice"
	NotificationRecruiterJobCreate NotificationType = "recruiter-job-creation"
)

// NotificationJob is one pending email preview. Jobs live in memory only
// and are consumed exactly once, on explicit human confirmation or
// cancellation.
type NotificationJob struct {
	ID           string           `json:"id"`
	Type         NotificationType `json:"type"`
	JobID        string           `json:"job_id"`
	WorkflowID   string           `json:"workflow_id"`
	Phase        Phase            `json:"phase"`
	CandidateIDs []string         `json:"candidate_ids"`
	Recruiters   []Recruiter      `json:"recruiters,omitempty"`
}
