package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/snapshot"
)

type recordingMirror struct {
	states []*models.CompetitionState
	err    error
}

func (m *recordingMirror) MirrorState(_ context.Context, state *models.CompetitionState) error {
	if m.err != nil {
		return m.err
	}
	m.states = append(m.states, state)
	return nil
}

func newStateService(t *testing.T, path string) *StateService {
	t.Helper()
	svc, err := NewStateService(snapshot.NewStore(path), nil, testLogger())
	require.NoError(t, err)
	return svc
}

func TestUpdateRederivesHasLive(t *testing.T) {
	svc := newStateService(t, filepath.Join(t.TempDir(), "state.json"))

	next := svc.Update(func(state *models.CompetitionState) {
		state.LiveSessions["line_follower"] = models.LiveSession{TeamID: "t1", StartTime: time.Now()}
	})
	assert.True(t, next.HasLive)

	next = svc.Update(func(state *models.CompetitionState) {
		delete(state.LiveSessions, "line_follower")
		// Even a deliberately wrong flag gets corrected on the way out.
		state.HasLive = true
	})
	assert.False(t, next.HasLive)
}

func TestStateReturnsPrivateClone(t *testing.T) {
	svc := newStateService(t, filepath.Join(t.TempDir(), "state.json"))
	svc.SetOrdered("robot_fight", true)

	leaked := svc.State()
	leaked.OrderedCompetitions["junior"] = true
	delete(leaked.OrderedCompetitions, "robot_fight")

	current := svc.State()
	assert.True(t, current.OrderedCompetitions["robot_fight"])
	assert.False(t, current.OrderedCompetitions["junior"])
}

func TestStateSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := newStateService(t, path)
	first.SetProfilesLocked(true)
	first.SetEventDayStarted(true)
	first.Update(func(state *models.CompetitionState) {
		state.TerminationTimestamps["all_terrain"] = 1766000000000
	})

	second := newStateService(t, path)
	state := second.State()
	assert.True(t, state.ProfilesLocked)
	assert.True(t, state.EventDayStarted)
	assert.Equal(t, int64(1766000000000), state.TerminationTimestamps["all_terrain"])
}

func TestMirrorRemote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	mirror := &recordingMirror{}
	svc, err := NewStateService(snapshot.NewStore(path), mirror, testLogger())
	require.NoError(t, err)

	svc.SetEventDayStarted(true)
	require.NoError(t, svc.MirrorRemote(context.Background()))
	require.Len(t, mirror.states, 1)
	assert.True(t, mirror.states[0].EventDayStarted)

	mirror.err = errors.New("bucket unavailable")
	assert.Error(t, svc.MirrorRemote(context.Background()))
}

func TestMirrorRemoteWithoutMirrorIsNoop(t *testing.T) {
	svc := newStateService(t, filepath.Join(t.TempDir(), "state.json"))
	assert.NoError(t, svc.MirrorRemote(context.Background()))
}
