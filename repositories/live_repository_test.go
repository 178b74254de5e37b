package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CharfiNour/enstarobots-server/models"
)

func newLiveRepoMock(t *testing.T) (LiveSessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresLiveSessionRepository(db), mock
}

func TestLiveSessionListKeysByCategory(t *testing.T) {
	repo, mock := newLiveRepoMock(t)
	start := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT category, team_id, phase, start_time, score_summary, last_update FROM live_sessions`)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "team_id", "phase", "start_time", "score_summary", "last_update"}).
			AddRow("robot_fight", "t1", "Semi Final", start, "2 - 1", start.Add(time.Minute)).
			AddRow("line_follower", "t2", "Essay 2", start, nil, nil))

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	fight := sessions["robot_fight"]
	assert.Equal(t, "t1", fight.TeamID)
	require.NotNil(t, fight.ScoreSummary)
	assert.Equal(t, "2 - 1", *fight.ScoreSummary)

	lf := sessions["line_follower"]
	assert.Nil(t, lf.ScoreSummary)
	assert.Nil(t, lf.LastUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLiveSessionDeleteMissingRow(t *testing.T) {
	repo, mock := newLiveRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM live_sessions WHERE category = $1`)).
		WithArgs("junior").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "junior")
	assert.ErrorIs(t, err, ErrLiveSessionNotFound)
	assert.True(t, IsNotFound(err))
}

func TestLiveSessionUpsert(t *testing.T) {
	repo, mock := newLiveRepoMock(t)
	start := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO live_sessions`)).
		WithArgs("all_terrain", "t5", "Final", start, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), "all_terrain", models.LiveSession{
		TeamID:    "t5",
		Phase:     "Final",
		StartTime: start,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
