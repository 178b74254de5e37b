package handlers

import (
	"net/http"

	"github.com/CharfiNour/enstarobots-server/services"
)

// StateHandler exposes the competition-wide flags and the remote mirror
// trigger. Mutations need no explicit broadcast here: every persisted state
// change fans out STATE_UPDATED through the snapshot store's subscribers.
type StateHandler struct {
	state        *services.StateService
	competitions *services.CompetitionService
}

func NewStateHandler(state *services.StateService, competitions *services.CompetitionService) *StateHandler {
	return &StateHandler{state: state, competitions: competitions}
}

func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, jsonResponse{"state": h.state.State()})
}

type boolFlagRequest struct {
	Value bool `json:"value"`
}

func (h *StateHandler) SetProfilesLocked(w http.ResponseWriter, r *http.Request) {
	var req boolFlagRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	state := h.state.SetProfilesLocked(req.Value)
	writeJSON(w, http.StatusOK, jsonResponse{"state": state})
}

func (h *StateHandler) SetEventDayStarted(w http.ResponseWriter, r *http.Request) {
	var req boolFlagRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	state := h.state.SetEventDayStarted(req.Value)
	writeJSON(w, http.StatusOK, jsonResponse{"state": state})
}

type orderedRequest struct {
	Category string `json:"category"`
	Ordered  bool   `json:"ordered"`
}

func (h *StateHandler) SetOrdered(w http.ResponseWriter, r *http.Request) {
	var req orderedRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	cat, err := h.competitions.ResolveCategory(r.Context(), req.Category)
	if err != nil {
		serviceError(w, err)
		return
	}
	state := h.state.SetOrdered(cat.ID, req.Ordered)
	writeJSON(w, http.StatusOK, jsonResponse{"state": state})
}

// Mirror pushes the current state to the remote store on demand.
func (h *StateHandler) Mirror(w http.ResponseWriter, r *http.Request) {
	if err := h.state.MirrorRemote(r.Context()); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"mirrored": true})
}
