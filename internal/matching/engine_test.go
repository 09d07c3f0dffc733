package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// stubDirectory serves a fixed job set and fails everything else.
type stubDirectory struct {
	jobs map[string]*models.Job
}

func (s *stubDirectory) GetJob(_ context.Context, id string) (*models.Job, error) {
	if job, ok := s.jobs[id]; ok {
		return job, nil
	}
	return nil, apperr.NotFound("job", id)
}

func (s *stubDirectory) GetCandidate(context.Context, string) (*models.Candidate, error) {
	return nil, apperr.NotFound("candidate", "")
}

func (s *stubDirectory) ListApplicants(context.Context, string) ([]models.Candidate, error) {
	return nil, nil
}

func (s *stubDirectory) ListCandidates(context.Context) ([]models.Candidate, error) {
	return nil, nil
}

func (s *stubDirectory) ListRecruiters(context.Context, string) ([]models.Recruiter, error) {
	return nil, nil
}

func (s *stubDirectory) ListDomains(context.Context) ([]models.Domain, error) { return nil, nil }

func (s *stubDirectory) ListTalentPools(context.Context, string) ([]models.TalentPool, error) {
	return nil, nil
}

func (s *stubDirectory) ListSkills(context.Context, []string) ([]models.Skill, error) {
	return nil, nil
}

func newTestEngine() *Engine {
	return NewEngine(&stubDirectory{
		jobs: map[string]*models.Job{
			"job-1": {ID: "job-1", Title: "Backend Engineer"},
		},
	}, zap.NewNop())
}

func evaluated(id string, skills, experience, years, location int) models.Candidate {
	return models.Candidate{
		ID: id,
		Evaluation: &models.Evaluation{
			Skills:     skills,
			Experience: experience,
			YearsOfExp: years,
			Location:   location,
		},
	}
}

func TestRankEqualWeightsUsesPlainMean(t *testing.T) {
	engine := newTestEngine()
	pool := []models.Candidate{evaluated("c1", 80, 60, 40, 20)}
	pref := models.Preference{SkillsVsDescription: 50, ExperienceVsDescription: 50, YearsOfExperience: 50, Location: 50}

	results, err := engine.Rank(context.Background(), "job-1", pool, pref, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 50, results[0].CompositeScore)
}

func TestRankWeightedComposite(t *testing.T) {
	engine := newTestEngine()
	pool := []models.Candidate{evaluated("a", 90, 70, 50, 40)}
	pref := models.Preference{SkillsVsDescription: 80, ExperienceVsDescription: 80, YearsOfExperience: 20, Location: 20}

	results, err := engine.Rank(context.Background(), "job-1", pool, pref, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// round((90*0.8 + 70*0.8 + 50*0.2 + 40*0.2) / 2.0) == 73
	assert.Equal(t, 73, results[0].CompositeScore)
	assert.Equal(t, models.ComponentScores{Skills: 90, Experience: 70, YearsOfExp: 50, Location: 40}, results[0].ComponentScores)
}

func TestRankAuthoritativeScorePrecedence(t *testing.T) {
	engine := newTestEngine()
	cand := evaluated("c1", 61, 61, 61, 61)
	pre := 73
	cand.Evaluation.Composite = &pre

	results, err := engine.Rank(context.Background(), "job-1", []models.Candidate{cand}, models.Preference{SkillsVsDescription: 100}, 5)
	require.NoError(t, err)
	assert.Equal(t, 73, results[0].CompositeScore)
}

func TestRankZeroWeights(t *testing.T) {
	engine := newTestEngine()
	pool := []models.Candidate{evaluated("c1", 80, 80, 80, 80)}

	results, err := engine.Rank(context.Background(), "job-1", pool, models.Preference{}, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, results[0].CompositeScore)
}

func TestRankSortingAndTies(t *testing.T) {
	engine := newTestEngine()
	pool := []models.Candidate{
		evaluated("charlie", 40, 40, 40, 40),
		evaluated("bravo", 90, 90, 90, 90),
		evaluated("alpha", 40, 40, 40, 40),
	}
	pref := models.Preference{SkillsVsDescription: 50, ExperienceVsDescription: 50, YearsOfExperience: 50, Location: 50}

	results, err := engine.Rank(context.Background(), "job-1", pool, pref, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "bravo", results[0].CandidateID)
	// equal scores fall back to candidate id ordering
	assert.Equal(t, "alpha", results[1].CandidateID)
	assert.Equal(t, "charlie", results[2].CandidateID)
}

func TestRankDeterminism(t *testing.T) {
	engine := newTestEngine()
	pool := []models.Candidate{
		evaluated("c1", 77, 31, 56, 90),
		evaluated("c2", 12, 88, 43, 65),
		evaluated("c3", 50, 50, 50, 50),
	}
	pref := models.Preference{SkillsVsDescription: 70, ExperienceVsDescription: 10, YearsOfExperience: 30, Location: 90}

	first, err := engine.Rank(context.Background(), "job-1", pool, pref, 10)
	require.NoError(t, err)
	second, err := engine.Rank(context.Background(), "job-1", pool, pref, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRankLimit(t *testing.T) {
	engine := newTestEngine()
	pool := []models.Candidate{
		evaluated("c1", 90, 90, 90, 90),
		evaluated("c2", 50, 50, 50, 50),
		evaluated("c3", 10, 10, 10, 10),
	}
	pref := models.Preference{SkillsVsDescription: 50, ExperienceVsDescription: 50, YearsOfExperience: 50, Location: 50}

	results, err := engine.Rank(context.Background(), "job-1", pool, pref, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].CandidateID)

	_, err = engine.Rank(context.Background(), "job-1", pool, pref, 0)
	assert.True(t, apperr.IsValidation(err))
}

func TestRankEmptyPool(t *testing.T) {
	engine := newTestEngine()
	pref := models.Preference{SkillsVsDescription: 50}

	results, err := engine.Rank(context.Background(), "job-1", nil, pref, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRankUnknownJob(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.Rank(context.Background(), "missing", nil, models.Preference{}, 5)
	assert.True(t, apperr.IsNotFound(err))
}

func TestRankRejectsWeightOutOfRange(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.Rank(context.Background(), "job-1", nil, models.Preference{Location: 101}, 5)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "preference.location")
}

func TestDerivedComponents(t *testing.T) {
	job := &models.Job{
		ID:             "job-2",
		Domain:         "Engineering",
		RequiredSkills: []string{"Go", "Postgres"},
		Locations:      []string{"Berlin"},
		MinYearsOfExp:  4,
	}
	cand := &models.Candidate{
		ID:         "c1",
		Location:   "berlin",
		YearsOfExp: 2,
		Skills:     []string{"go"},
		Domains:    []string{"engineering"},
		Expertise:  []string{"postgres"},
	}

	comp := componentScores(job, cand)
	assert.Equal(t, 50, comp.Skills)
	assert.Equal(t, 80, comp.Experience) // 60 domain + 40 * 1/2 expertise
	assert.Equal(t, 50, comp.YearsOfExp)
	assert.Equal(t, 100, comp.Location)
}
