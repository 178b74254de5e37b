package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/realtime"
	"github.com/CharfiNour/enstarobots-server/repositories/mock"
	"github.com/CharfiNour/enstarobots-server/services"
)

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToCategory(string, realtime.Message) {}
func (noopBroadcaster) BroadcastAll(realtime.Message)               {}

func newScoreHandler(t *testing.T, teams ...models.Team) (*ScoreHandler, *mock.ScoreRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scores := mock.NewScoreRepository()
	svc := services.NewCompetitionService(
		scores,
		mock.NewTeamRepository(teams...),
		mock.NewCategoryRepository(),
		services.NewAggregationService(logger),
		services.NewPhaseService(),
		noopBroadcaster{},
		logger,
	)
	return NewScoreHandler(svc), scores
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/scores", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSubmitScoreHandler(t *testing.T) {
	h, _ := newScoreHandler(t, models.Team{ID: "t1", Name: "Alpha", Categories: []string{"line_follower"}})

	rec := postJSON(t, h.Submit, map[string]any{
		"team_id":      "t1",
		"category":     "suiveur",
		"phase":        "Essay 1",
		"total_points": 64.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Score models.ScoreSubmission `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Score.ID)
	assert.Equal(t, "line_follower", resp.Score.CompetitionCategory)
	assert.Equal(t, models.ScoreStatusPending, resp.Score.Status)
}

func TestSubmitScoreHandlerRejectsMalformedBody(t *testing.T) {
	h, _ := newScoreHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scores", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitScoreHandlerRejectsUnknownField(t *testing.T) {
	h, _ := newScoreHandler(t)

	rec := postJSON(t, h.Submit, map[string]any{"team_id": "t1", "points": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown key")
}

func TestSubmitScoreHandlerStatusMapping(t *testing.T) {
	h, scores := newScoreHandler(t, models.Team{ID: "t1", Name: "Alpha", Categories: []string{"line_follower"}})

	t.Run("unknown team is a 404", func(t *testing.T) {
		rec := postJSON(t, h.Submit, map[string]any{
			"team_id": "ghost", "category": "line_follower", "phase": "Essay 1",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing phase is a 422", func(t *testing.T) {
		rec := postJSON(t, h.Submit, map[string]any{
			"team_id": "t1", "category": "line_follower",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("finalized phase re-submission is a 409", func(t *testing.T) {
		rec := postJSON(t, h.Submit, map[string]any{
			"team_id": "t1", "category": "line_follower", "phase": "Essay 1", "status": "validated",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = postJSON(t, h.Submit, map[string]any{
			"team_id": "t1", "category": "line_follower", "phase": "Essay 1",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)

		all, err := scores.List(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestListPublicFiltersHiddenScores(t *testing.T) {
	h, scores := newScoreHandler(t, models.Team{ID: "t1", Name: "Alpha", Categories: []string{"maze_solver"}})

	hidden := models.ScoreSubmission{ID: "s1", TeamID: "t1", CompetitionCategory: "maze_solver", Phase: "Essay 1"}
	visible := models.ScoreSubmission{ID: "s2", TeamID: "t1", CompetitionCategory: "maze_solver", Phase: "Essay 1", IsVisibleToTeam: true}
	require.NoError(t, scores.Upsert(context.Background(), &hidden))
	require.NoError(t, scores.Upsert(context.Background(), &visible))

	req := httptest.NewRequest(http.MethodGet, "/api/public/scores?category=ms", nil)
	rec := httptest.NewRecorder()
	h.ListPublic(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Scores []models.ScoreSubmission `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Scores, 1)
	assert.Equal(t, "s2", resp.Scores[0].ID)
}
