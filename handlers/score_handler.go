package handlers

import (
	"net/http"
	"time"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/services"
)

type ScoreHandler struct {
	competitions *services.CompetitionService
}

func NewScoreHandler(competitions *services.CompetitionService) *ScoreHandler {
	return &ScoreHandler{competitions: competitions}
}

// List returns submissions, optionally filtered by ?category=.
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.competitions.ListScores(r.Context(), r.URL.Query().Get("category"), false)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"scores": subs})
}

// ListPublic returns only submissions flagged visible to teams.
func (h *ScoreHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	subs, err := h.competitions.ListScores(r.Context(), r.URL.Query().Get("category"), true)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"scores": subs})
}

type submitScoreRequest struct {
	ID              string         `json:"id"`
	MatchID         *string        `json:"match_id"`
	TeamID          string         `json:"team_id"`
	Category        string         `json:"category"`
	Phase           string         `json:"phase"`
	TotalPoints     float64        `json:"total_points"`
	Status          string         `json:"status"`
	Timestamp       *time.Time     `json:"timestamp"`
	DetailedScores  map[string]any `json:"detailed_scores"`
	IsVisibleToTeam bool           `json:"is_visible_to_team"`
}

// Submit upserts one submission. An empty id creates a new record and runs
// the duplicate-submission guard; a known id replaces that record in full.
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitScoreRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := &models.ScoreSubmission{
		ID:                  req.ID,
		MatchID:             req.MatchID,
		TeamID:              req.TeamID,
		CompetitionCategory: req.Category,
		Phase:               req.Phase,
		TotalPoints:         req.TotalPoints,
		Status:              models.ScoreStatus(req.Status),
		DetailedScores:      req.DetailedScores,
		IsVisibleToTeam:     req.IsVisibleToTeam,
	}
	if req.Timestamp != nil {
		sub.Timestamp = *req.Timestamp
	}

	created, err := h.competitions.SubmitScore(r.Context(), sub)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"score": created})
}

type deleteScoresRequest struct {
	Category string  `json:"category"`
	Phase    *string `json:"phase"`
	Status   *string `json:"status"`
}

// Delete removes submissions matching category (+ optional phase, status).
func (h *ScoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteScoresRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	var status *models.ScoreStatus
	if req.Status != nil {
		st := models.ScoreStatus(*req.Status)
		status = &st
	}
	n, err := h.competitions.DeleteScores(r.Context(), req.Category, req.Phase, status)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"deleted": n})
}
