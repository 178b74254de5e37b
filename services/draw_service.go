package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CharfiNour/enstarobots-server/categories"
	"github.com/CharfiNour/enstarobots-server/draw"
	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/realtime"
	"github.com/CharfiNour/enstarobots-server/repositories"
	"github.com/google/uuid"
)

// DrawCountdownSeconds is how long spectator views animate before the new
// groups land. The countdown runs client-side off the DRAW_STARTED event;
// the server persists the draw immediately after broadcasting it.
const DrawCountdownSeconds = 5

// DrawService derives draw eligibility, previews partitions, and executes a
// draw by replacing the pending placeholders of one category/phase pair.
type DrawService struct {
	scoreRepo repositories.ScoreRepository
	teamRepo  repositories.TeamRepository
	catalog   *CompetitionService
	planner   *draw.Planner
	hub       realtime.Broadcaster
	logger    *slog.Logger
	now       func() time.Time
}

func NewDrawService(
	scoreRepo repositories.ScoreRepository,
	teamRepo repositories.TeamRepository,
	catalog *CompetitionService,
	planner *draw.Planner,
	hub realtime.Broadcaster,
	logger *slog.Logger,
) *DrawService {
	return &DrawService{
		scoreRepo: scoreRepo,
		teamRepo:  teamRepo,
		catalog:   catalog,
		planner:   planner,
		hub:       hub,
		logger:    logger,
		now:       time.Now,
	}
}

// EligibleTeams computes which teams may enter the phase: for the first
// phase, every registered non-placeholder team of the category; afterwards,
// only teams whose latest submission in the previous phase carries a winner
// or qualified status.
func (s *DrawService) EligibleTeams(ctx context.Context, cat models.CompetitionCategory, phase string) ([]models.Team, error) {
	phaseIndex := cat.PhaseIndex(phase)
	if phaseIndex < 0 {
		return nil, fmt.Errorf("%q: %w", phase, ErrUnknownPhase)
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch teams: %w", err)
	}
	cats, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}
	resolve := categories.Resolver(cats)

	registered := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if t.Placeholder {
			continue
		}
		if t.AssignedTo(cat.ID, resolve) {
			registered = append(registered, t)
		}
	}
	if phaseIndex == 0 {
		return registered, nil
	}

	// Unfiltered fetch: results persisted under legacy identifiers would be
	// missed by a store-side filter and their teams dropped from the draw.
	subs, err := s.scoreRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	previous := cat.Phases[phaseIndex-1]
	eligible := make([]models.Team, 0, len(registered))
	for _, t := range registered {
		latest, ok := latestForTeamPhase(subs, resolve, cat.ID, t.ID, previous)
		if !ok {
			continue
		}
		if latest.Status == models.ScoreStatusWinner || latest.Status == models.ScoreStatusQualified {
			eligible = append(eligible, t)
		}
	}
	return eligible, nil
}

// Plan previews a draw without touching any state.
func (s *DrawService) Plan(ctx context.Context, rawCategory, phase string, groupSize int) (*models.DrawPlan, error) {
	cat, err := s.catalog.ResolveCategory(ctx, rawCategory)
	if err != nil {
		return nil, err
	}
	eligible, err := s.EligibleTeams(ctx, cat, phase)
	if err != nil {
		return nil, err
	}
	plan, err := s.planner.Plan(eligible, groupSize)
	if err != nil {
		if errors.Is(err, draw.ErrTooFewTeams) {
			return nil, ErrDrawTooFewTeams
		}
		return nil, err
	}
	return plan, nil
}

// Execute persists a draw. It broadcasts the countdown event, deletes only
// the still-pending submissions of this exact category/phase pair (recorded
// results are never touched), then inserts one pending placeholder per team
// and generated match. Re-running a draw therefore only ever replaces
// placeholders, never history.
func (s *DrawService) Execute(ctx context.Context, rawCategory, phase string, groupSize int) ([]models.ScoreSubmission, error) {
	cat, err := s.catalog.ResolveCategory(ctx, rawCategory)
	if err != nil {
		return nil, err
	}
	plan, err := s.Plan(ctx, rawCategory, phase, groupSize)
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToCategory(string(cat.ID), realtime.Message{
		Type: realtime.MessageDrawStarted,
		Payload: realtime.DrawStartedPayload{
			Category:         string(cat.ID),
			Phase:            phase,
			CountdownSeconds: DrawCountdownSeconds,
		},
	})

	pending := models.ScoreStatusPending
	removed, err := s.scoreRepo.DeleteMatching(ctx, cat.ID, &phase, &pending)
	if err != nil {
		return nil, fmt.Errorf("clear pending placeholders: %w", err)
	}
	if removed > 0 {
		s.logger.Info("replaced pending draw placeholders",
			slog.String("category", string(cat.ID)),
			slog.String("phase", phase),
			slog.Int64("removed", removed))
	}

	// One timestamp base for the whole draw, offset per group, so group
	// display order stays deterministic even though all inserts land in the
	// same instant.
	base := s.now()
	created := make([]models.ScoreSubmission, 0, plan.EligibleTeamCount)
	for groupIndex, group := range plan.Groups {
		matchID := uuid.NewString()
		ts := base.Add(time.Duration(groupIndex) * time.Millisecond)
		for _, team := range group {
			sub := models.ScoreSubmission{
				ID:                  uuid.NewString(),
				MatchID:             &matchID,
				TeamID:              team.ID,
				CompetitionCategory: string(cat.ID),
				Phase:               phase,
				Status:              models.ScoreStatusPending,
				Timestamp:           ts,
				IsVisibleToTeam:     false,
			}
			if err := s.scoreRepo.Upsert(ctx, &sub); err != nil {
				return nil, fmt.Errorf("persist draw placeholder for team %s: %w", team.ID, err)
			}
			created = append(created, sub)
		}
	}

	s.hub.BroadcastToCategory(string(cat.ID), realtime.Message{Type: realtime.MessageScoresUpdated})
	return created, nil
}
