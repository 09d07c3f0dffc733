// Package models defines the domain models for the hiring-pipeline service.
package models

// Job is a read-only snapshot of a job posting owned by the external
// job-management service. The pipeline core never mutates jobs.
type Job struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Organization   string   `json:"organization"`
	Domain         string   `json:"domain"`
	RequiredSkills []string `json:"required_skills"`
	Locations      []string `json:"locations"`
	MinYearsOfExp  float64  `json:"min_years_of_exp"`
	MaxYearsOfExp  float64  `json:"max_years_of_exp"`
	MinSalary      float64  `json:"min_salary"`
	MaxSalary      float64  `json:"max_salary"`
}

// Candidate is a read-only snapshot of a candidate profile owned by the
// external directory. The core carries candidate identifiers through the
// phase chain and reads snapshots only for matching and notifications.
type Candidate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Location    string   `json:"location"`
	YearsOfExp  float64  `json:"years_of_exp"`
	Skills      []string `json:"skills"`
	Domains     []string `json:"domains"`
	TalentPools []string `json:"talent_pools"`
	Expertise   []string `json:"expertise"`

	// Evaluation is the most recent upstream scoring of this candidate, if
	// one exists. A nil Evaluation means the matching engine derives the
	// component scores itself.
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// Evaluation holds per-component scores for a candidate against a job,
// each in [0,100]. Composite, when present, is an authoritative composite
// score that must be reported verbatim instead of being recomputed.
type Evaluation struct {
	Skills     int  `json:"skills"`
	Experience int  `json:"experience"`
	YearsOfExp int  `json:"years_of_exp"`
	Location   int  `json:"location"`
	Composite  *int `json:"composite,omitempty"`
}

// Recruiter identifies a recruiter associated with a job, the audience of
// recruiter-facing phase notifications.
type Recruiter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Domain, TalentPool and Skill form the dependent lookup hierarchy used by
// the matching preference UI. The core only proxies these lookups.
type Domain struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TalentPool struct {
	ID       string `json:"id"`
	DomainID string `json:"domain_id"`
	Name     string `json:"name"`
}

type Skill struct {
	ID           string `json:"id"`
	TalentPoolID string `json:"talent_pool_id"`
	Name         string `json:"name"`
}
