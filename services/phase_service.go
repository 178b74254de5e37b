package services

import (
	"github.com/CharfiNour/enstarobots-server/models"
)

// PhaseProgress reports whether a phase has started and whether it is done.
// It is always derived from the submissions themselves; storing it would
// create a second source of truth that can drift.
type PhaseProgress struct {
	Exists   bool `json:"exists"`
	Finished bool `json:"finished"`
}

// PhaseService computes phase progression from the aggregated group view.
type PhaseService struct{}

func NewPhaseService() *PhaseService {
	return &PhaseService{}
}

// Progress evaluates one phase of a category over its group view.
// rosterSize is the number of teams registered in the category; it gates
// "finished" for single-team categories, where every registered team must
// have a non-pending latest submission.
func (s *PhaseService) Progress(cat models.CompetitionCategory, phase string, groups []models.Group, rosterSize int) PhaseProgress {
	if cat.IsMatchBased {
		return matchProgress(phase, groups)
	}
	return singleProgress(phase, groups, rosterSize)
}

func matchProgress(phase string, groups []models.Group) PhaseProgress {
	progress := PhaseProgress{Finished: true}
	for _, g := range groups {
		if !g.IsMatch() || !g.HasPhase(phase) {
			continue
		}
		progress.Exists = true
		for _, p := range g.Participants {
			latest, ok := latestForPhase(p.Submissions, phase)
			// A participant with no score in the phase keeps the group open.
			if !ok || latest.IsPending() {
				progress.Finished = false
			}
		}
	}
	if !progress.Exists {
		progress.Finished = false
	}
	return progress
}

func singleProgress(phase string, groups []models.Group, rosterSize int) PhaseProgress {
	progress := PhaseProgress{Finished: true}
	submitted := 0
	for _, g := range groups {
		if g.IsMatch() {
			continue
		}
		latest, ok := latestForPhase(g.Submissions, phase)
		if !ok {
			continue
		}
		progress.Exists = true
		submitted++
		if latest.IsPending() {
			progress.Finished = false
		}
	}
	if !progress.Exists || submitted < rosterSize {
		progress.Finished = false
	}
	return progress
}

// IsAccessible gates entry into phase index k. Phase 0 is always open; a
// later phase opens when the previous one finished, or stays open once it
// has any activity of its own, so forward progress is idempotent even if an
// earlier phase somehow regresses.
func (s *PhaseService) IsAccessible(cat models.CompetitionCategory, phaseIndex int, groups []models.Group, rosterSize int) bool {
	if phaseIndex < 0 || phaseIndex >= len(cat.Phases) {
		return false
	}
	if phaseIndex == 0 {
		return true
	}
	if s.Progress(cat, cat.Phases[phaseIndex-1], groups, rosterSize).Finished {
		return true
	}
	return s.Progress(cat, cat.Phases[phaseIndex], groups, rosterSize).Exists
}

// latestForPhase returns the submission with the greatest timestamp among
// those tagged with the phase. Ties resolve to the later list entry, which
// matches insertion order.
func latestForPhase(subs []models.ScoreSubmission, phase string) (models.ScoreSubmission, bool) {
	var latest models.ScoreSubmission
	found := false
	for _, s := range subs {
		if s.Phase != phase {
			continue
		}
		if !found || !s.Timestamp.Before(latest.Timestamp) {
			latest = s
			found = true
		}
	}
	return latest, found
}
