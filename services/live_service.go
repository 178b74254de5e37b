package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/realtime"
	"github.com/CharfiNour/enstarobots-server/repositories"
)

// DefaultMutationWindow is how long after a local start/end transition
// externally-sourced session updates for that category are ignored. During
// the window the local optimistic state is the temporary source of truth;
// once it closes, remote state is trusted again.
const DefaultMutationWindow = 4 * time.Second

// LiveService is the per-category IDLE -> LIVE -> IDLE state machine for
// "who is on stage". Transitions apply locally first and persist remotely in
// the background; a failed remote write never rolls the local state back,
// because judging must not be blocked by network trouble.
type LiveService struct {
	state  *StateService
	remote repositories.LiveSessionRepository
	hub    realtime.Broadcaster
	logger *slog.Logger

	now    func() time.Time
	window time.Duration

	mu       sync.Mutex
	lockedTo map[models.CategoryID]time.Time

	events chan reconcileEvent
	done   chan struct{}

	// background gates the remote writes; tests swap it for a synchronous
	// runner to avoid sleeping.
	background func(fn func())
}

// reconcileEvent carries one remote live-session snapshot into the
// reconcile loop. Fetch callbacks and realtime echoes both funnel through
// here, so the staleness guards live in exactly one place.
type reconcileEvent struct {
	sessions map[models.CategoryID]models.LiveSession
}

func NewLiveService(
	state *StateService,
	remote repositories.LiveSessionRepository,
	hub realtime.Broadcaster,
	logger *slog.Logger,
) *LiveService {
	return &LiveService{
		state:      state,
		remote:     remote,
		hub:        hub,
		logger:     logger,
		now:        time.Now,
		window:     DefaultMutationWindow,
		lockedTo:   make(map[models.CategoryID]time.Time),
		events:     make(chan reconcileEvent, 16),
		done:       make(chan struct{}),
		background: func(fn func()) { go fn() },
	}
}

// Run consumes reconcile events until ctx is cancelled.
func (s *LiveService) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.Reconcile(ev.sessions)
		}
	}
}

// Start puts a team on stage. The local transition is optimistic: state and
// spectators see LIVE before the remote upsert resolves, and a remote
// failure is logged, not surfaced.
func (s *LiveService) Start(ctx context.Context, category models.CategoryID, teamID, phase string) (models.LiveSession, error) {
	if teamID == "" {
		return models.LiveSession{}, ErrTeamIDRequired
	}
	if category == "" {
		return models.LiveSession{}, ErrCategoryRequired
	}

	session := models.LiveSession{
		TeamID:    teamID,
		Phase:     phase,
		StartTime: s.now(),
	}

	s.lockCategory(category)
	s.state.Update(func(state *models.CompetitionState) {
		state.LiveSessions[category] = session
	})

	s.background(func() {
		// Detached from the request context: the caller's request finishing
		// must not cancel the persistence attempt.
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := s.remote.Upsert(bgCtx, category, session); err != nil {
			s.logger.Warn("remote live session upsert failed, keeping local state",
				slog.String("category", string(category)),
				slog.String("team_id", teamID),
				slog.Any("error", err))
		}
	})

	s.hub.BroadcastToCategory(string(category), realtime.Message{
		Type:    realtime.MessageLiveSessionUpdated,
		Payload: session,
	})
	return session, nil
}

// End takes the category off stage. The termination timestamp is recorded
// before anything else: it is the guard that keeps a slow fetch, issued
// before this call but resolved after it, from resurrecting the session.
func (s *LiveService) End(ctx context.Context, category models.CategoryID) error {
	if category == "" {
		return ErrCategoryRequired
	}
	if _, ok := s.state.State().LiveSessions[category]; !ok {
		return ErrSessionNotLive
	}

	terminatedAt := s.now().UnixMilli()
	s.lockCategory(category)
	s.state.Update(func(state *models.CompetitionState) {
		state.TerminationTimestamps[category] = terminatedAt
		delete(state.LiveSessions, category)
	})

	s.background(func() {
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := s.remote.Delete(bgCtx, category); err != nil && !repositories.IsNotFound(err) {
			s.logger.Warn("remote live session delete failed, keeping local state",
				slog.String("category", string(category)),
				slog.Any("error", err))
		}
	})

	s.hub.BroadcastToCategory(string(category), realtime.Message{
		Type: realtime.MessageLiveSessionUpdated,
	})
	return nil
}

// Session reports the current live session for a category, if any.
func (s *LiveService) Session(category models.CategoryID) (models.LiveSession, bool) {
	state := s.state.State()
	session, ok := state.LiveSessions[category]
	return session, ok
}

// Sessions returns all current live sessions.
func (s *LiveService) Sessions() map[models.CategoryID]models.LiveSession {
	return s.state.State().LiveSessions
}

// ApplyRemote enqueues a remote snapshot for reconciliation. Dropping on a
// full queue is safe: snapshots are hints, and the next refresh repeats them.
func (s *LiveService) ApplyRemote(sessions map[models.CategoryID]models.LiveSession) {
	select {
	case s.events <- reconcileEvent{sessions: sessions}:
	default:
		s.logger.Debug("reconcile queue full, dropping remote snapshot")
	}
}

// Refresh fetches the remote sessions and feeds them through reconciliation.
// Called on realtime change hints and on the periodic sync tick.
func (s *LiveService) Refresh(ctx context.Context) error {
	sessions, err := s.remote.List(ctx)
	if err != nil {
		return err
	}
	s.ApplyRemote(sessions)
	return nil
}

// Reconcile merges one remote snapshot into local state under the two
// guards: categories inside an open mutation window keep their local state,
// and sessions started before the category's termination timestamp are
// stale echoes, discarded without logging (expected steady-state behavior).
func (s *LiveService) Reconcile(remote map[models.CategoryID]models.LiveSession) {
	now := s.now()
	changed := false

	s.state.Update(func(state *models.CompetitionState) {
		for category, session := range remote {
			if s.isLocked(category, now) {
				continue
			}
			if terminatedAt, ok := state.TerminationTimestamps[category]; ok &&
				session.StartTime.UnixMilli() < terminatedAt {
				continue
			}
			current, exists := state.LiveSessions[category]
			if !exists || !current.StartTime.Equal(session.StartTime) || current.TeamID != session.TeamID {
				state.LiveSessions[category] = session
				changed = true
			}
		}
		for category := range state.LiveSessions {
			if _, stillLive := remote[category]; stillLive {
				continue
			}
			if s.isLocked(category, now) {
				continue
			}
			delete(state.LiveSessions, category)
			changed = true
		}
	})

	if changed {
		s.hub.BroadcastAll(realtime.Message{Type: realtime.MessageLiveSessionUpdated})
	}
}

func (s *LiveService) lockCategory(category models.CategoryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockedTo[category] = s.now().Add(s.window)
}

func (s *LiveService) isLocked(category models.CategoryID, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.lockedTo[category]
	if !ok {
		return false
	}
	if now.After(until) {
		delete(s.lockedTo, category)
		return false
	}
	return true
}
