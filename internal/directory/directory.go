// Package directory talks to the external candidate/job directory. The
// pipeline core only ever reads from it.
package directory

import (
	"context"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// Directory is the read-only lookup surface the core consumes. It is
// implemented over HTTP by Client and by test doubles in unit tests.
type Directory interface {
	GetJob(ctx context.Context, id string) (*models.Job, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	ListApplicants(ctx context.Context, jobID string) ([]models.Candidate, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	ListRecruiters(ctx context.Context, jobID string) ([]models.Recruiter, error)

	ListDomains(ctx context.Context) ([]models.Domain, error)
	ListTalentPools(ctx context.Context, domainID string) ([]models.TalentPool, error)
	ListSkills(ctx context.Context, talentPoolIDs []string) ([]models.Skill, error)
}
