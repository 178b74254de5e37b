package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/CharfiNour/enstarobots-server/models"
)

// Read caching bounds read amplification from jury and spectator devices.
// TTLs are short for volatile data and longer for rosters; every mutating
// path invalidates the affected entries synchronously with the write, so the
// cache never outlives a local change.
const (
	ScoreCacheTTL    = 5 * time.Second
	LiveCacheTTL     = 3 * time.Second
	TeamCacheTTL     = 60 * time.Second
	CategoryCacheTTL = 5 * time.Minute
)

type cacheEntry[T any] struct {
	value   T
	expires time.Time
}

type ttlCache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry[T]
}

func newTTLCache[T any](ttl time.Duration) *ttlCache[T] {
	return &ttlCache[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry[T]),
	}
}

func (c *ttlCache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expires) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

func (c *ttlCache[T]) put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[T]{value: value, expires: c.now().Add(c.ttl)}
}

func (c *ttlCache[T]) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry[T])
}

type cachedScoreRepository struct {
	inner ScoreRepository
	cache *ttlCache[[]models.ScoreSubmission]
}

func NewCachedScoreRepository(inner ScoreRepository) ScoreRepository {
	return &cachedScoreRepository{inner: inner, cache: newTTLCache[[]models.ScoreSubmission](ScoreCacheTTL)}
}

func (r *cachedScoreRepository) List(ctx context.Context, category *models.CategoryID) ([]models.ScoreSubmission, error) {
	key := ""
	if category != nil {
		key = string(*category)
	}
	if subs, ok := r.cache.get(key); ok {
		return subs, nil
	}
	subs, err := r.inner.List(ctx, category)
	if err != nil {
		return nil, err
	}
	r.cache.put(key, subs)
	return subs, nil
}

func (r *cachedScoreRepository) Upsert(ctx context.Context, sub *models.ScoreSubmission) error {
	if err := r.inner.Upsert(ctx, sub); err != nil {
		return err
	}
	r.cache.purge()
	return nil
}

func (r *cachedScoreRepository) DeleteMatching(ctx context.Context, category models.CategoryID, phase *string, status *models.ScoreStatus) (int64, error) {
	n, err := r.inner.DeleteMatching(ctx, category, phase, status)
	if err != nil {
		return n, err
	}
	r.cache.purge()
	return n, nil
}

type cachedLiveSessionRepository struct {
	inner LiveSessionRepository
	cache *ttlCache[map[models.CategoryID]models.LiveSession]
}

func NewCachedLiveSessionRepository(inner LiveSessionRepository) LiveSessionRepository {
	return &cachedLiveSessionRepository{inner: inner, cache: newTTLCache[map[models.CategoryID]models.LiveSession](LiveCacheTTL)}
}

func (r *cachedLiveSessionRepository) List(ctx context.Context) (map[models.CategoryID]models.LiveSession, error) {
	if sessions, ok := r.cache.get(""); ok {
		return sessions, nil
	}
	sessions, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.put("", sessions)
	return sessions, nil
}

func (r *cachedLiveSessionRepository) Upsert(ctx context.Context, category models.CategoryID, session models.LiveSession) error {
	err := r.inner.Upsert(ctx, category, session)
	r.cache.purge()
	return err
}

func (r *cachedLiveSessionRepository) Delete(ctx context.Context, category models.CategoryID) error {
	err := r.inner.Delete(ctx, category)
	r.cache.purge()
	return err
}

type cachedTeamRepository struct {
	inner TeamRepository
	cache *ttlCache[[]models.Team]
}

func NewCachedTeamRepository(inner TeamRepository) TeamRepository {
	return &cachedTeamRepository{inner: inner, cache: newTTLCache[[]models.Team](TeamCacheTTL)}
}

func (r *cachedTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	if teams, ok := r.cache.get(""); ok {
		return teams, nil
	}
	teams, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.put("", teams)
	return teams, nil
}

func (r *cachedTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	return r.inner.GetByID(ctx, id)
}

type cachedCategoryRepository struct {
	inner CategoryRepository
	cache *ttlCache[[]models.CompetitionCategory]
}

func NewCachedCategoryRepository(inner CategoryRepository) CategoryRepository {
	return &cachedCategoryRepository{inner: inner, cache: newTTLCache[[]models.CompetitionCategory](CategoryCacheTTL)}
}

func (r *cachedCategoryRepository) List(ctx context.Context) ([]models.CompetitionCategory, error) {
	if cats, ok := r.cache.get(""); ok {
		return cats, nil
	}
	cats, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.put("", cats)
	return cats, nil
}
