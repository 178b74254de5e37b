package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CharfiNour/enstarobots-server/categories"
	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/realtime"
	"github.com/CharfiNour/enstarobots-server/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CompetitionService is the read/submit facade over the persisted store: it
// fetches the inputs, canonicalizes categories, and delegates to the pure
// aggregation and phase engines.
type CompetitionService struct {
	scoreRepo    repositories.ScoreRepository
	teamRepo     repositories.TeamRepository
	categoryRepo repositories.CategoryRepository
	aggregation  *AggregationService
	phases       *PhaseService
	hub          realtime.Broadcaster
	logger       *slog.Logger
	now          func() time.Time
}

func NewCompetitionService(
	scoreRepo repositories.ScoreRepository,
	teamRepo repositories.TeamRepository,
	categoryRepo repositories.CategoryRepository,
	aggregation *AggregationService,
	phases *PhaseService,
	hub realtime.Broadcaster,
	logger *slog.Logger,
) *CompetitionService {
	return &CompetitionService{
		scoreRepo:    scoreRepo,
		teamRepo:     teamRepo,
		categoryRepo: categoryRepo,
		aggregation:  aggregation,
		phases:       phases,
		hub:          hub,
		logger:       logger,
		now:          time.Now,
	}
}

// competitionSnapshot is one consistent-enough read of the shared store.
type competitionSnapshot struct {
	submissions []models.ScoreSubmission
	teams       []models.Team
	categories  []models.CompetitionCategory
}

// snapshot fetches submissions, teams and categories in parallel. The three
// lists are independently cached reads; cross-list skew is tolerated the
// same way concurrent remote writers are.
func (s *CompetitionService) snapshot(ctx context.Context, category *models.CategoryID) (*competitionSnapshot, error) {
	snap := &competitionSnapshot{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		subs, err := s.scoreRepo.List(gCtx, category)
		if err != nil {
			return fmt.Errorf("fetch scores: %w", err)
		}
		snap.submissions = subs
		return nil
	})
	g.Go(func() error {
		teams, err := s.teamRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("fetch teams: %w", err)
		}
		snap.teams = teams
		return nil
	})
	g.Go(func() error {
		remote, err := s.categoryRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		snap.categories = categories.Merge(remote)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Categories returns the static catalog merged with remote records.
func (s *CompetitionService) Categories(ctx context.Context) ([]models.CompetitionCategory, error) {
	remote, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return categories.Merge(remote), nil
}

// ResolveCategory canonicalizes a raw identifier and returns the catalog
// entry behind it.
func (s *CompetitionService) ResolveCategory(ctx context.Context, raw string) (models.CompetitionCategory, error) {
	if raw == "" {
		return models.CompetitionCategory{}, ErrCategoryRequired
	}
	cats, err := s.Categories(ctx)
	if err != nil {
		return models.CompetitionCategory{}, err
	}
	slug := categories.Canonicalize(raw, cats)
	for _, c := range cats {
		if c.ID == slug {
			return c, nil
		}
	}
	return models.CompetitionCategory{}, fmt.Errorf("%q: %w", raw, ErrCategoryNotFound)
}

// Groups returns the aggregated group view for one category.
func (s *CompetitionService) Groups(ctx context.Context, rawCategory string) ([]models.Group, error) {
	cat, err := s.ResolveCategory(ctx, rawCategory)
	if err != nil {
		return nil, err
	}
	// Submissions still carrying legacy identifiers for this category would
	// be missed by a store-side filter, so the snapshot is unfiltered and
	// the aggregation's canonical view does the narrowing.
	snap, err := s.snapshot(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.aggregation.AggregateCategory(cat.ID, snap.submissions, snap.teams, snap.categories), nil
}

// PhaseProgress evaluates one phase of one category.
func (s *CompetitionService) PhaseProgress(ctx context.Context, rawCategory, phase string) (PhaseProgress, error) {
	if phase == "" {
		return PhaseProgress{}, ErrPhaseRequired
	}
	cat, err := s.ResolveCategory(ctx, rawCategory)
	if err != nil {
		return PhaseProgress{}, err
	}
	snap, err := s.snapshot(ctx, nil)
	if err != nil {
		return PhaseProgress{}, err
	}
	groups := s.aggregation.AggregateCategory(cat.ID, snap.submissions, snap.teams, snap.categories)
	roster := rosterSize(cat.ID, snap.teams, snap.categories)
	return s.phases.Progress(cat, phase, groups, roster), nil
}

// IsPhaseAccessible gates navigation into the phase at the given index.
func (s *CompetitionService) IsPhaseAccessible(ctx context.Context, rawCategory string, phaseIndex int) (bool, error) {
	cat, err := s.ResolveCategory(ctx, rawCategory)
	if err != nil {
		return false, err
	}
	snap, err := s.snapshot(ctx, nil)
	if err != nil {
		return false, err
	}
	groups := s.aggregation.AggregateCategory(cat.ID, snap.submissions, snap.teams, snap.categories)
	roster := rosterSize(cat.ID, snap.teams, snap.categories)
	return s.phases.IsAccessible(cat, phaseIndex, groups, roster), nil
}

// ListScores exposes the raw submissions, optionally narrowed to a category
// and to team-visible entries only (the public endpoint).
func (s *CompetitionService) ListScores(ctx context.Context, rawCategory string, visibleOnly bool) ([]models.ScoreSubmission, error) {
	var filter *models.CategoryID
	if rawCategory != "" {
		cat, err := s.ResolveCategory(ctx, rawCategory)
		if err != nil {
			return nil, err
		}
		filter = &cat.ID
	}
	subs, err := s.scoreRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	if !visibleOnly {
		return subs, nil
	}
	visible := make([]models.ScoreSubmission, 0, len(subs))
	for _, sub := range subs {
		if sub.IsVisibleToTeam {
			visible = append(visible, sub)
		}
	}
	return visible, nil
}

// SubmitScore validates and upserts one submission. A submission against a
// phase the team has already finalized is rejected; only the latest prior
// submission per team/phase counts for that check (latest wins).
func (s *CompetitionService) SubmitScore(ctx context.Context, sub *models.ScoreSubmission) (*models.ScoreSubmission, error) {
	if sub.TeamID == "" {
		return nil, ErrTeamIDRequired
	}
	if sub.Phase == "" {
		return nil, ErrPhaseRequired
	}
	cat, err := s.ResolveCategory(ctx, sub.CompetitionCategory)
	if err != nil {
		return nil, err
	}
	if cat.PhaseIndex(sub.Phase) < 0 {
		return nil, fmt.Errorf("%q: %w", sub.Phase, ErrUnknownPhase)
	}
	if _, err := s.teamRepo.GetByID(ctx, sub.TeamID); err != nil {
		return nil, fmt.Errorf("team %q: %w", sub.TeamID, ErrTeamNotFound)
	}

	// Unfiltered fetch: rows persisted under legacy identifiers would be
	// missed by a store-side filter and let a finalized phase be re-opened.
	existing, err := s.scoreRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	resolve := categories.Resolver(cats)

	// New submissions must not reach a finalized phase; only replacing a
	// known submission id is a deliberate correction and passes through.
	// A client-invented fresh id is still a new submission.
	if !containsSubmissionID(existing, sub.ID) {
		if latest, ok := latestForTeamPhase(existing, resolve, cat.ID, sub.TeamID, sub.Phase); ok && latest.Finalized() {
			return nil, ErrDuplicateSubmission
		}
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	sub.CompetitionCategory = string(cat.ID)
	if sub.Status == "" {
		sub.Status = models.ScoreStatusPending
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = s.now()
	}

	if err := s.scoreRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	s.hub.BroadcastToCategory(string(cat.ID), realtime.Message{Type: realtime.MessageScoresUpdated})
	return sub, nil
}

// DeleteScores removes submissions for a category, optionally narrowed to a
// phase and status, and notifies listeners when anything changed.
func (s *CompetitionService) DeleteScores(ctx context.Context, rawCategory string, phase *string, status *models.ScoreStatus) (int64, error) {
	cat, err := s.ResolveCategory(ctx, rawCategory)
	if err != nil {
		return 0, err
	}
	n, err := s.scoreRepo.DeleteMatching(ctx, cat.ID, phase, status)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.hub.BroadcastToCategory(string(cat.ID), realtime.Message{Type: realtime.MessageScoresUpdated})
	}
	return n, nil
}

// rosterSize counts the teams registered in a category. Placeholder slots
// are not part of the roster: an unfilled slot must not hold a phase open.
func rosterSize(category models.CategoryID, teams []models.Team, cats []models.CompetitionCategory) int {
	resolve := categories.Resolver(cats)
	n := 0
	for _, t := range teams {
		if t.Placeholder {
			continue
		}
		if t.AssignedTo(category, resolve) {
			n++
		}
	}
	return n
}

func containsSubmissionID(subs []models.ScoreSubmission, id string) bool {
	if id == "" {
		return false
	}
	for _, s := range subs {
		if s.ID == id {
			return true
		}
	}
	return false
}

// latestForTeamPhase finds the newest submission of one team in one phase of
// one category. Submissions match through the canonicalizer, so rows stored
// under legacy identifiers count toward the category.
func latestForTeamPhase(subs []models.ScoreSubmission, resolve func(string) models.CategoryID, category models.CategoryID, teamID, phase string) (models.ScoreSubmission, bool) {
	var latest models.ScoreSubmission
	found := false
	for _, s := range subs {
		if s.TeamID != teamID || s.Phase != phase {
			continue
		}
		if resolve(s.CompetitionCategory) != category {
			continue
		}
		if !found || !s.Timestamp.Before(latest.Timestamp) {
			latest = s
			found = true
		}
	}
	return latest, found
}
