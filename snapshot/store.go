// Package snapshot persists the competition state to a local JSON file and
// notifies in-process subscribers on every save, so other views re-render
// without polling.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/CharfiNour/enstarobots-server/models"
)

type Store struct {
	path string

	mu          sync.Mutex
	subscribers []func(*models.CompetitionState)
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load hydrates the last saved state. A missing or empty file yields a fresh
// empty state rather than an error: first boot and wiped volumes are normal.
func (s *Store) Load() (*models.CompetitionState, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.NewCompetitionState(), nil
		}
		return nil, fmt.Errorf("read state snapshot %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return models.NewCompetitionState(), nil
	}

	state := models.NewCompetitionState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("decode state snapshot %s: %w", s.path, err)
	}
	state.Normalize()
	return state, nil
}

// Save writes the state atomically (temp file + rename) and then notifies
// subscribers with a private clone each.
func (s *Store) Save(state *models.CompetitionState) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state snapshot %s: %w", s.path, err)
	}

	s.notify(state)
	return nil
}

// Subscribe registers a callback invoked after every successful save.
// Callbacks run synchronously on the saving goroutine and must be quick.
func (s *Store) Subscribe(fn func(*models.CompetitionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify(state *models.CompetitionState) {
	s.mu.Lock()
	subs := make([]func(*models.CompetitionState), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state.Clone())
	}
}
