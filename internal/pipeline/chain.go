// Package pipeline implements the hiring-pipeline workflow engine: the
// ordered phase chain, its candidate-subset invariant, and the workflow
// aggregate built on top of it.
//
// Chain invariant: for every phase index i > 0 the candidate set of phase i
// is a subset of the candidate set of phase i-1. A candidate can only
// advance through the pipeline, never be invented mid-pipeline. Operations
// reject violations, they never repair them.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/apperr"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

// All chain operations are pure: they return a new chain and leave the
// input untouched.

// NewChain builds a single-phase chain seeded with the given candidates.
func NewChain(initialCandidates []string) []models.Phase {
	phase := models.Phase{
		Type:       models.PhaseTypeCustom,
		Status:     models.PhaseStatusActive,
		Candidates: dedupe(initialCandidates),
	}
	phase.CandidateStatuses = defaultStatuses(phase.Candidates, nil)
	return renumber([]models.Phase{phase})
}

// Append adds a new phase whose initial candidate set equals the last
// phase's set, or an empty set when the chain is empty.
func Append(chain []models.Phase) []models.Phase {
	next := cloneChain(chain)
	var inherited []string
	if len(next) > 0 {
		inherited = append([]string(nil), next[len(next)-1].Candidates...)
	}
	phase := models.Phase{
		Type:       models.PhaseTypeCustom,
		Status:     models.PhaseStatusActive,
		Candidates: inherited,
	}
	phase.CandidateStatuses = defaultStatuses(phase.Candidates, nil)
	return renumber(append(next, phase))
}

// Remove deletes the phase at index. Removing the last remaining phase is
// an invariant violation: a workflow always has at least one phase.
func Remove(chain []models.Phase, index int) ([]models.Phase, error) {
	if err := checkIndex(chain, index); err != nil {
		return nil, err
	}
	if len(chain) <= 1 {
		return nil, apperr.Invariant(index, "a workflow must keep at least one phase")
	}
	next := cloneChain(chain)
	next = append(next[:index], next[index+1:]...)
	return renumber(next), nil
}

// SetCandidates replaces the candidate set of the phase at index. For
// index > 0 the new set must be a subset of the previous phase's set, and
// shrinking a phase must not strand candidates in the phase after it;
// phase 0 is the entry point and accepts any set.
func SetCandidates(chain []models.Phase, index int, candidates []string) ([]models.Phase, error) {
	if err := checkIndex(chain, index); err != nil {
		return nil, err
	}
	set := dedupe(candidates)
	if index > 0 {
		if missing := subtract(set, chain[index-1].Candidates); len(missing) > 0 {
			return nil, apperr.Invariant(index, fmt.Sprintf("candidates %v are not present in phase %d", missing, index-1))
		}
	}
	if index < len(chain)-1 {
		if missing := subtract(chain[index+1].Candidates, set); len(missing) > 0 {
			return nil, apperr.Invariant(index+1, fmt.Sprintf("candidates %v are not present in phase %d", missing, index))
		}
	}
	next := cloneChain(chain)
	next[index].CandidateStatuses = defaultStatuses(set, next[index].CandidateStatuses)
	next[index].Candidates = set
	return next, nil
}

// SelectAll assigns the phase's full eligible pool: the external roster for
// phase 0, the previous phase's candidates otherwise.
func SelectAll(chain []models.Phase, index int, roster []string) ([]models.Phase, error) {
	if err := checkIndex(chain, index); err != nil {
		return nil, err
	}
	pool := roster
	if index > 0 {
		pool = chain[index-1].Candidates
	}
	return SetCandidates(chain, index, pool)
}

// DeselectAll empties the phase's candidate set.
func DeselectAll(chain []models.Phase, index int) ([]models.Phase, error) {
	return SetCandidates(chain, index, nil)
}

// AddSuggested unions candidateIDs into the phase's set, silently dropping
// identifiers already present. The subset invariant is re-validated rather
// than trusting the caller's pool.
func AddSuggested(chain []models.Phase, index int, candidateIDs []string) ([]models.Phase, error) {
	if err := checkIndex(chain, index); err != nil {
		return nil, err
	}
	union := dedupe(append(append([]string(nil), chain[index].Candidates...), candidateIDs...))
	return SetCandidates(chain, index, union)
}

// SetType updates the phase's type with no cross-phase effect.
func SetType(chain []models.Phase, index int, t models.PhaseType) ([]models.Phase, error) {
	if err := checkIndex(chain, index); err != nil {
		return nil, err
	}
	if !validPhaseType(t) {
		return nil, apperr.ValidationAt(index, "type", fmt.Sprintf("unknown phase type %q", t))
	}
	next := cloneChain(chain)
	next[index].Type = t
	return next, nil
}

// SetStatus updates the phase's status with no cross-phase effect.
func SetStatus(chain []models.Phase, index int, s models.PhaseStatus) ([]models.Phase, error) {
	if err := checkIndex(chain, index); err != nil {
		return nil, err
	}
	if !validPhaseStatus(s) {
		return nil, apperr.ValidationAt(index, "status", fmt.Sprintf("unknown phase status %q", s))
	}
	next := cloneChain(chain)
	next[index].Status = s
	return next, nil
}

// SetCustomFields replaces the phase's custom fields, keeping only pairs
// with both a key and a value.
func SetCustomFields(chain []models.Phase, index int, fields []models.CustomField) ([]models.Phase, error) {
	if err := checkIndex(chain, index); err != nil {
		return nil, err
	}
	next := cloneChain(chain)
	next[index].CustomFields = filterCustomFields(fields)
	return next, nil
}

// Validate checks a full replacement chain: non-empty, valid enums, and the
// subset invariant across every adjacent pair. Used before an atomic
// workflow update so a bad chain never partially persists.
func Validate(chain []models.Phase) error {
	if len(chain) == 0 {
		return apperr.Validation("phases", "a workflow needs at least one phase")
	}
	for i := range chain {
		if !validPhaseType(chain[i].Type) {
			return apperr.ValidationAt(i, "type", fmt.Sprintf("unknown phase type %q", chain[i].Type))
		}
		if !validPhaseStatus(chain[i].Status) {
			return apperr.ValidationAt(i, "status", fmt.Sprintf("unknown phase status %q", chain[i].Status))
		}
		if i > 0 {
			if missing := subtract(chain[i].Candidates, chain[i-1].Candidates); len(missing) > 0 {
				return apperr.Invariant(i, fmt.Sprintf("candidates %v are not present in phase %d", missing, i-1))
			}
		}
	}
	return nil
}

// Normalize prepares a caller-supplied chain for persistence: candidate
// sets are deduplicated and sorted, custom fields filtered, candidate
// statuses defaulted, numbering and names recomputed.
func Normalize(chain []models.Phase) []models.Phase {
	next := cloneChain(chain)
	for i := range next {
		next[i].Candidates = dedupe(next[i].Candidates)
		next[i].CandidateStatuses = defaultStatuses(next[i].Candidates, next[i].CandidateStatuses)
		next[i].CustomFields = filterCustomFields(next[i].CustomFields)
	}
	return renumber(next)
}

// renumber recomputes PhaseNumber and PhaseName for every phase in index
// order. User-entered phase names are clobbered here on purpose: derived
// names are the current product behavior.
func renumber(chain []models.Phase) []models.Phase {
	for k := range chain {
		chain[k].PhaseNumber = k
		chain[k].PhaseName = fmt.Sprintf("Phase %d", k)
		if k == 0 {
			chain[k].PhaseName += " (When Starts)"
		}
	}
	return chain
}

func checkIndex(chain []models.Phase, index int) error {
	if index < 0 || index >= len(chain) {
		return apperr.ValidationAt(index, "phase_index", fmt.Sprintf("index out of range, chain has %d phases", len(chain)))
	}
	return nil
}

// defaultStatuses keeps known per-candidate statuses for retained
// candidates, assigns "New" to newcomers, and drops entries for candidates
// no longer in the phase.
func defaultStatuses(candidates []string, prior map[string]string) map[string]string {
	statuses := make(map[string]string, len(candidates))
	for _, id := range candidates {
		if st, ok := prior[id]; ok && st != "" {
			statuses[id] = st
			continue
		}
		statuses[id] = models.CandidateStatusNew
	}
	return statuses
}

func filterCustomFields(fields []models.CustomField) []models.CustomField {
	kept := make([]models.CustomField, 0, len(fields))
	for _, f := range fields {
		if f.Key != "" && f.Value != "" {
			kept = append(kept, f)
		}
	}
	return kept
}

// dedupe returns a sorted copy of ids without duplicates or empty entries.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// subtract returns the elements of set that are absent from pool.
func subtract(set, pool []string) []string {
	in := make(map[string]struct{}, len(pool))
	for _, id := range pool {
		in[id] = struct{}{}
	}
	var missing []string
	for _, id := range set {
		if _, ok := in[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func cloneChain(chain []models.Phase) []models.Phase {
	next := make([]models.Phase, len(chain))
	for i, p := range chain {
		next[i] = p
		next[i].Candidates = append([]string(nil), p.Candidates...)
		next[i].CustomFields = append([]models.CustomField(nil), p.CustomFields...)
		if p.CandidateStatuses != nil {
			statuses := make(map[string]string, len(p.CandidateStatuses))
			for k, v := range p.CandidateStatuses {
				statuses[k] = v
			}
			next[i].CandidateStatuses = statuses
		}
	}
	return next
}

func validPhaseType(t models.PhaseType) bool {
	switch t {
	case models.PhaseTypeInterviewVideo, models.PhaseTypeInterviewCall, models.PhaseTypeInterviewOnsite,
		models.PhaseTypeTestOnline, models.PhaseTypeTestOffline, models.PhaseTypeCustom:
		return true
	}
	return false
}

func validPhaseStatus(s models.PhaseStatus) bool {
	switch s {
	case models.PhaseStatusActive, models.PhaseStatusCompleted, models.PhaseStatusOnHold, models.PhaseStatusCancelled:
		return true
	}
	return false
}
