// Package matching scores and ranks candidates against a job using the
// caller's weighting preference. Scoring is pure: identical inputs always
// produce identical scores and ordering.
package matching

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/directory"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// equalWeightTolerance is the maximum spread between normalized weights for
// which the engine treats all four weights as equal and computes a plain
// arithmetic mean instead of a normalized weighted average. Rounding in four
// independent divisions must never make "all sliders equal" visibly disagree
// with a direct mean.
const equalWeightTolerance = 0.01

// Engine ranks candidate pools against jobs.
type Engine struct {
	dir    directory.Directory
	logger *zap.Logger
	ranked metric.Int64Counter
}

// NewEngine creates an Engine backed by the given directory.
func NewEngine(dir directory.Directory, logger *zap.Logger) *Engine {
	meter := otel.Meter("staffanchor/matching")
	ranked, _ := meter.Int64Counter("matching.candidates_ranked",
		metric.WithDescription("number of candidates scored by Rank"))

	return &Engine{dir: dir, logger: logger, ranked: ranked}
}

// Rank scores every candidate in pool against the job and returns the top
// limit results sorted descending by composite score, ties broken by
// candidate id. An empty pool yields an empty result. An unknown job is a
// NotFoundError; a malformed preference or non-positive limit is a
// ValidationError.
func (e *Engine) Rank(ctx context.Context, jobID string, pool []models.Candidate, pref models.Preference, limit int) ([]models.MatchResult, error) {
	if limit <= 0 {
		return nil, apperr.Validation("limit", fmt.Sprintf("must be positive, got %d", limit))
	}
	if err := validatePreference(pref); err != nil {
		return nil, err
	}

	job, err := e.dir.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	results := make([]models.MatchResult, 0, len(pool))
	for i := range pool {
		results = append(results, score(job, &pool[i], pref))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CompositeScore != results[j].CompositeScore {
			return results[i].CompositeScore > results[j].CompositeScore
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	if limit < len(results) {
		results = results[:limit]
	}

	e.ranked.Add(ctx, int64(len(pool)))
	e.logger.Debug("ranked candidate pool",
		zap.String("job_id", jobID),
		zap.Int("pool", len(pool)),
		zap.Int("returned", len(results)),
	)

	return results, nil
}

// validatePreference rejects any weight outside [0,100], naming the
// offending field.
func validatePreference(pref models.Preference) error {
	weights := []struct {
		name  string
		value int
	}{
		{"preference.skills_vs_description", pref.SkillsVsDescription},
		{"preference.experience_vs_description", pref.ExperienceVsDescription},
		{"preference.years_of_experience", pref.YearsOfExperience},
		{"preference.location", pref.Location},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > 100 {
			return apperr.Validation(w.name, fmt.Sprintf("weight must be in [0,100], got %d", w.value))
		}
	}
	return nil
}

// score produces the match result for a single candidate.
func score(job *models.Job, cand *models.Candidate, pref models.Preference) models.MatchResult {
	comp := componentScores(job, cand)

	var authoritative *int
	if cand.Evaluation != nil {
		authoritative = cand.Evaluation.Composite
	}

	return models.MatchResult{
		CandidateID:     cand.ID,
		CompositeScore:  composite(comp, pref, authoritative),
		ComponentScores: comp,
	}
}

// componentScores returns the per-factor breakdown for a candidate. An
// upstream evaluation snapshot, when present, is authoritative for the
// components; otherwise they are derived from the job and candidate
// profiles.
func componentScores(job *models.Job, cand *models.Candidate) models.ComponentScores {
	if ev := cand.Evaluation; ev != nil {
		return models.ComponentScores{
			Skills:     ev.Skills,
			Experience: ev.Experience,
			YearsOfExp: ev.YearsOfExp,
			Location:   ev.Location,
		}
	}
	return models.ComponentScores{
		Skills:     skillsScore(job, cand),
		Experience: experienceScore(job, cand),
		YearsOfExp: yearsScore(job, cand),
		Location:   locationScore(job, cand),
	}
}

// composite implements the weighted composite with the authoritative-score
// and equal-weights carve-outs.
func composite(comp models.ComponentScores, pref models.Preference, authoritative *int) int {
	// an upstream composite is authoritative and never recomputed
	if authoritative != nil {
		return *authoritative
	}

	ws := float64(pref.SkillsVsDescription) / 100
	we := float64(pref.ExperienceVsDescription) / 100
	wy := float64(pref.YearsOfExperience) / 100
	wl := float64(pref.Location) / 100

	total := ws + we + wy + wl
	if total == 0 {
		return 0
	}

	if weightsEqual(ws, we, wy, wl) {
		sum := float64(comp.Skills + comp.Experience + comp.YearsOfExp + comp.Location)
		return int(math.Round(sum / 4))
	}

	weighted := float64(comp.Skills)*ws +
		float64(comp.Experience)*we +
		float64(comp.YearsOfExp)*wy +
		float64(comp.Location)*wl
	return int(math.Round(weighted / total))
}

// weightsEqual reports whether all normalized weights lie within the
// equal-weight tolerance of each other.
func weightsEqual(ws ...float64) bool {
	lo, hi := ws[0], ws[0]
	for _, w := range ws[1:] {
		lo = math.Min(lo, w)
		hi = math.Max(hi, w)
	}
	return hi-lo <= equalWeightTolerance+1e-9
}
