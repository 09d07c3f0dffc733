package matching

import (
	"math"
	"strings"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// Component derivation used when no upstream evaluation snapshot exists.
// Each scorer returns an integer in [0,100] and depends only on the job and
// candidate snapshots.

// skillsScore is the fraction of the job's required skills the candidate
// lists, as a percentage. A job without required skills matches everyone.
func skillsScore(job *models.Job, cand *models.Candidate) int {
	if len(job.RequiredSkills) == 0 {
		return 100
	}
	have := toSet(cand.Skills)
	matched := 0
	for _, s := range job.RequiredSkills {
		if _, ok := have[fold(s)]; ok {
			matched++
		}
	}
	return int(math.Round(100 * float64(matched) / float64(len(job.RequiredSkills))))
}

// experienceScore measures domain affinity: working in the job's domain
// carries most of the weight, hands-on expertise in the required skills the
// rest.
func experienceScore(job *models.Job, cand *models.Candidate) int {
	score := 0.0
	if job.Domain == "" || containsFold(cand.Domains, job.Domain) {
		score += 60
	}
	if len(job.RequiredSkills) == 0 {
		score += 40
	} else {
		expert := toSet(cand.Expertise)
		matched := 0
		for _, s := range job.RequiredSkills {
			if _, ok := expert[fold(s)]; ok {
				matched++
			}
		}
		score += 40 * float64(matched) / float64(len(job.RequiredSkills))
	}
	return int(math.Round(score))
}

// yearsScore compares the candidate's years of experience against the
// job's expected range. Anything inside or above the range is a full
// match; below the minimum scales linearly.
func yearsScore(job *models.Job, cand *models.Candidate) int {
	if job.MinYearsOfExp <= 0 {
		return 100
	}
	if cand.YearsOfExp >= job.MinYearsOfExp {
		return 100
	}
	return int(math.Round(100 * cand.YearsOfExp / job.MinYearsOfExp))
}

// locationScore is binary: the candidate is either in one of the job's
// locations or not. A job with no locations is treated as remote-friendly.
func locationScore(job *models.Job, cand *models.Candidate) int {
	if len(job.Locations) == 0 {
		return 100
	}
	if containsFold(job.Locations, cand.Location) {
		return 100
	}
	return 0
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[fold(it)] = struct{}{}
	}
	return set
}

func containsFold(items []string, want string) bool {
	for _, it := range items {
		if fold(it) == fold(want) {
			return true
		}
	}
	return false
}
