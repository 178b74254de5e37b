package handlers

import (
	"log/slog"
	"net/http"

	"github.com/CharfiNour/enstarobots-server/realtime"
	"github.com/CharfiNour/enstarobots-server/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Spectator screens are served from varying origins at the venue;
	// subprotocol auth is handled upstream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub          *realtime.Hub
	competitions *services.CompetitionService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, competitions *services.CompetitionService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, competitions: competitions, logger: logger}
}

// ServeCategory subscribes the connection to one category's room. The raw
// identifier in the URL is canonicalized so legacy ids join the right room.
func (h *WebSocketHandler) ServeCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.competitions.ResolveCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		serviceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed",
			slog.String("category", string(cat.ID)), slog.Any("error", err))
		return
	}
	h.hub.NewClient(conn, string(cat.ID))
}

// ServeGlobal subscribes the connection to every broadcast.
func (h *WebSocketHandler) ServeGlobal(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	h.hub.NewClient(conn, realtime.GlobalRoom)
}
