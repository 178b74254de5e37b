package handlers

import (
	"net/http"

	"github.com/CharfiNour/enstarobots-server/services"
	"github.com/go-chi/chi/v5"
)

type LiveHandler struct {
	live         *services.LiveService
	competitions *services.CompetitionService
}

func NewLiveHandler(live *services.LiveService, competitions *services.CompetitionService) *LiveHandler {
	return &LiveHandler{live: live, competitions: competitions}
}

type startSessionRequest struct {
	TeamID string `json:"team_id"`
	Phase  string `json:"phase"`
}

func (h *LiveHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	cat, err := h.competitions.ResolveCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		serviceError(w, err)
		return
	}
	session, err := h.live.Start(r.Context(), cat.ID, req.TeamID, req.Phase)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"session": session})
}

func (h *LiveHandler) End(w http.ResponseWriter, r *http.Request) {
	cat, err := h.competitions.ResolveCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		serviceError(w, err)
		return
	}
	if err := h.live.End(r.Context(), cat.ID); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"ended": true})
}

func (h *LiveHandler) Get(w http.ResponseWriter, r *http.Request) {
	cat, err := h.competitions.ResolveCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		serviceError(w, err)
		return
	}
	session, ok := h.live.Session(cat.ID)
	if !ok {
		writeJSON(w, http.StatusOK, jsonResponse{"live": false})
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"live": true, "session": session})
}

func (h *LiveHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, jsonResponse{"sessions": h.live.Sessions()})
}

// Refresh triggers a reconcile pass against the remote store; realtime
// change hints from clients land here.
func (h *LiveHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.live.Refresh(r.Context()); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jsonResponse{"refreshing": true})
}
