package handlers

import (
	"errors"
	"net/http"

	"github.com/CharfiNour/enstarobots-server/repositories"
	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teams repositories.TeamRepository
}

func NewTeamHandler(teams repositories.TeamRepository) *TeamHandler {
	return &TeamHandler{teams: teams}
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"teams": teams})
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"team": team})
}
