package handlers

import (
	"net/http"

	"github.com/CharfiNour/enstarobots-server/services"
	"github.com/go-chi/chi/v5"
)

type DrawHandler struct {
	draws *services.DrawService
}

func NewDrawHandler(draws *services.DrawService) *DrawHandler {
	return &DrawHandler{draws: draws}
}

type drawRequest struct {
	Phase     string `json:"phase"`
	GroupSize int    `json:"group_size"`
}

// Plan previews the partition without persisting anything.
func (h *DrawHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := h.draws.Plan(r.Context(), chi.URLParam(r, "category"), req.Phase, req.GroupSize)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"plan": plan})
}

// Execute runs the draw: countdown broadcast, pending placeholders replaced.
func (h *DrawHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.draws.Execute(r.Context(), chi.URLParam(r, "category"), req.Phase, req.GroupSize)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"scores": created})
}
