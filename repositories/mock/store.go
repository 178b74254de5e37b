// Package mock provides in-memory repository implementations for tests and
// local development without a database.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/repositories"
)

type ScoreRepository struct {
	mu     sync.Mutex
	scores map[string]models.ScoreSubmission

	// UpsertErr and DeleteErr, when set, are returned by the corresponding
	// methods to exercise failure paths.
	UpsertErr error
	DeleteErr error
	ListErr   error
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{scores: make(map[string]models.ScoreSubmission)}
}

func (r *ScoreRepository) List(_ context.Context, category *models.CategoryID) ([]models.ScoreSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	var subs []models.ScoreSubmission
	for _, s := range r.scores {
		if category != nil && s.CompetitionCategory != string(*category) {
			continue
		}
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].Timestamp.Equal(subs[j].Timestamp) {
			return subs[i].Timestamp.Before(subs[j].Timestamp)
		}
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (r *ScoreRepository) Upsert(_ context.Context, sub *models.ScoreSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpsertErr != nil {
		return r.UpsertErr
	}
	r.scores[sub.ID] = *sub
	return nil
}

func (r *ScoreRepository) DeleteMatching(_ context.Context, category models.CategoryID, phase *string, status *models.ScoreStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return 0, r.DeleteErr
	}
	var n int64
	for id, s := range r.scores {
		if s.CompetitionCategory != string(category) {
			continue
		}
		if phase != nil && s.Phase != *phase {
			continue
		}
		if status != nil && s.Status != *status {
			continue
		}
		delete(r.scores, id)
		n++
	}
	return n, nil
}

type LiveSessionRepository struct {
	mu       sync.Mutex
	sessions map[models.CategoryID]models.LiveSession

	UpsertErr error
	DeleteErr error

	// Calls counts remote writes, letting tests assert that background
	// persistence actually ran.
	UpsertCalls int
	DeleteCalls int
}

func NewLiveSessionRepository() *LiveSessionRepository {
	return &LiveSessionRepository{sessions: make(map[models.CategoryID]models.LiveSession)}
}

func (r *LiveSessionRepository) List(_ context.Context) (map[models.CategoryID]models.LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[models.CategoryID]models.LiveSession, len(r.sessions))
	for k, v := range r.sessions {
		out[k] = v
	}
	return out, nil
}

func (r *LiveSessionRepository) Upsert(_ context.Context, category models.CategoryID, session models.LiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpsertCalls++
	if r.UpsertErr != nil {
		return r.UpsertErr
	}
	r.sessions[category] = session
	return nil
}

func (r *LiveSessionRepository) Delete(_ context.Context, category models.CategoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DeleteCalls++
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	if _, ok := r.sessions[category]; !ok {
		return repositories.ErrLiveSessionNotFound
	}
	delete(r.sessions, category)
	return nil
}

type TeamRepository struct {
	mu    sync.Mutex
	teams []models.Team
}

func NewTeamRepository(teams ...models.Team) *TeamRepository {
	return &TeamRepository{teams: teams}
}

func (r *TeamRepository) Add(team models.Team) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams = append(r.teams, team)
}

func (r *TeamRepository) List(_ context.Context) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Team, len(r.teams))
	copy(out, r.teams)
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, id string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.ID == id {
			team := t
			return &team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

type CategoryRepository struct {
	Categories []models.CompetitionCategory
}

func NewCategoryRepository(cats ...models.CompetitionCategory) *CategoryRepository {
	return &CategoryRepository{Categories: cats}
}

func (r *CategoryRepository) List(_ context.Context) ([]models.CompetitionCategory, error) {
	return r.Categories, nil
}
