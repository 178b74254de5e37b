package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/snapshot"
)

// StateMirror pushes a state snapshot to the remote store; implemented by
// storage.StateMirror, nil-able when no object storage is configured.
type StateMirror interface {
	MirrorState(ctx context.Context, state *models.CompetitionState) error
}

// StateService owns the process-wide CompetitionState. All mutation goes
// through Update, which re-derives the legacy HasLive flag, persists the
// snapshot locally (the snapshot store notifies in-process subscribers) and
// keeps the remote mirror as an explicit, on-demand step.
type StateService struct {
	local  *snapshot.Store
	mirror StateMirror
	logger *slog.Logger

	mu      sync.Mutex
	current *models.CompetitionState
}

func NewStateService(local *snapshot.Store, mirror StateMirror, logger *slog.Logger) (*StateService, error) {
	state, err := local.Load()
	if err != nil {
		return nil, err
	}
	return &StateService{
		local:   local,
		mirror:  mirror,
		logger:  logger,
		current: state,
	}, nil
}

// State returns a private clone of the current state.
func (s *StateService) State() *models.CompetitionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Update applies fn to a clone of the current state, normalizes the result,
// swaps it in and persists it. A failed local save is logged, not fatal: the
// in-memory state stays the operational truth and the next save self-heals.
func (s *StateService) Update(fn func(state *models.CompetitionState)) *models.CompetitionState {
	s.mu.Lock()
	next := s.current.Clone()
	fn(next)
	next.Normalize()
	s.current = next
	s.mu.Unlock()

	if err := s.local.Save(next.Clone()); err != nil {
		s.logger.Warn("failed to persist state snapshot", slog.Any("error", err))
	}
	return next.Clone()
}

// MirrorRemote pushes the current state to the remote store. No-op when no
// mirror is configured.
func (s *StateService) MirrorRemote(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	return s.mirror.MirrorState(ctx, s.State())
}

func (s *StateService) SetProfilesLocked(locked bool) *models.CompetitionState {
	return s.Update(func(state *models.CompetitionState) {
		state.ProfilesLocked = locked
	})
}

func (s *StateService) SetEventDayStarted(started bool) *models.CompetitionState {
	return s.Update(func(state *models.CompetitionState) {
		state.EventDayStarted = started
	})
}

func (s *StateService) SetOrdered(category models.CategoryID, ordered bool) *models.CompetitionState {
	return s.Update(func(state *models.CompetitionState) {
		if ordered {
			state.OrderedCompetitions[category] = true
		} else {
			delete(state.OrderedCompetitions, category)
		}
	})
}
