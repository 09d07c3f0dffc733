package models

// Preference carries the four matching weights, each an independent slider
// in [0,100]. Weights are supplied per request and never persisted.
type Preference struct {
	SkillsVsDescription     int `json:"skills_vs_description"`
	ExperienceVsDescription int `json:"experience_vs_description"`
	YearsOfExperience       int `json:"years_of_experience"`
	Location                int `json:"location"`
}

// ComponentScores is the per-factor breakdown behind a composite match
// score, each component in [0,100].
type ComponentScores struct {
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	YearsOfExp int `json:"years_of_exp"`
	Location   int `json:"location"`
}

// MatchResult is the scored outcome for one candidate against one job.
type MatchResult struct {
	CandidateID     string          `json:"candidate_id"`
	CompositeScore  int             `json:"composite_score"`
	ComponentScores ComponentScores `json:"component_scores"`
}
