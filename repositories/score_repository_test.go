package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CharfiNour/enstarobots-server/models"
)

func newScoreRepoMock(t *testing.T) (ScoreRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresScoreRepository(db), mock
}

func scoreRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "match_id", "team_id", "category", "phase",
		"total_points", "status", "ts", "detailed_scores", "visible_to_team",
	})
}

func TestScoreListFiltersByCategory(t *testing.T) {
	repo, mock := newScoreRepoMock(t)
	ts := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, match_id, team_id, category, phase, total_points, status, ts, detailed_scores, visible_to_team FROM scores WHERE category = $1 ORDER BY ts ASC, id ASC`)).
		WithArgs("line_follower").
		WillReturnRows(scoreRows().
			AddRow("s1", nil, "t1", "line_follower", "Essay 1", 80.5, "validated", ts, []byte(`{"laps":3}`), true).
			AddRow("s2", "match-1", "t2", "line_follower", "Essay 1", 0.0, "pending", ts.Add(time.Minute), nil, false))

	category := models.CategoryID("line_follower")
	subs, err := repo.List(context.Background(), &category)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Nil(t, subs[0].MatchID)
	assert.Equal(t, models.ScoreStatusValidated, subs[0].Status)
	assert.Equal(t, 3.0, subs[0].DetailedScores["laps"])
	assert.True(t, subs[0].IsVisibleToTeam)

	require.NotNil(t, subs[1].MatchID)
	assert.Equal(t, "match-1", *subs[1].MatchID)
	assert.Nil(t, subs[1].DetailedScores)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreListUnfiltered(t *testing.T) {
	repo, mock := newScoreRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM scores ORDER BY ts ASC, id ASC`)).
		WillReturnRows(scoreRows())

	subs, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreUpsert(t *testing.T) {
	repo, mock := newScoreRepoMock(t)
	ts := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	matchID := "match-1"

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO scores`)).
		WithArgs("s1", matchID, "t1", "robot_fight", "Qualifications", 12.0, "pending", ts, []byte(`{"hits":4}`), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.ScoreSubmission{
		ID:                  "s1",
		MatchID:             &matchID,
		TeamID:              "t1",
		CompetitionCategory: "robot_fight",
		Phase:               "Qualifications",
		TotalPoints:         12,
		Status:              models.ScoreStatusPending,
		Timestamp:           ts,
		DetailedScores:      map[string]any{"hits": 4},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreUpsertMapsForeignKeyViolation(t *testing.T) {
	repo, mock := newScoreRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO scores`)).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation})

	err := repo.Upsert(context.Background(), &models.ScoreSubmission{ID: "s1", TeamID: "ghost"})
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestScoreDeleteMatchingBuildsNarrowedQuery(t *testing.T) {
	repo, mock := newScoreRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM scores WHERE category = $1 AND phase = $2 AND status = $3`)).
		WithArgs("robot_fight", "Qualifications", "pending").
		WillReturnResult(sqlmock.NewResult(0, 3))

	phase := "Qualifications"
	status := models.ScoreStatusPending
	n, err := repo.DeleteMatching(context.Background(), "robot_fight", &phase, &status)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreDeleteMatchingCategoryOnly(t *testing.T) {
	repo, mock := newScoreRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM scores WHERE category = $1`)).
		WithArgs("junior").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.DeleteMatching(context.Background(), "junior", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
