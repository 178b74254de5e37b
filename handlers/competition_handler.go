package handlers

import (
	"net/http"
	"strconv"

	"github.com/CharfiNour/enstarobots-server/services"
	"github.com/go-chi/chi/v5"
)

// CompetitionHandler serves the derived views: aggregated groups, phase
// progress and phase accessibility.
type CompetitionHandler struct {
	competitions *services.CompetitionService
}

func NewCompetitionHandler(competitions *services.CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{competitions: competitions}
}

func (h *CompetitionHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.competitions.Categories(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"categories": cats})
}

func (h *CompetitionHandler) Groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.competitions.Groups(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"groups": groups})
}

func (h *CompetitionHandler) PhaseProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.competitions.PhaseProgress(
		r.Context(),
		chi.URLParam(r, "category"),
		r.URL.Query().Get("phase"),
	)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *CompetitionHandler) PhaseAccessible(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "query parameter 'index' must be an integer")
		return
	}
	accessible, err := h.competitions.IsPhaseAccessible(r.Context(), chi.URLParam(r, "category"), index)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"accessible": accessible})
}
