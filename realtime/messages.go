package realtime

// Message types pushed to spectator and jury devices. The payloads are hints
// to re-fetch, not authoritative diffs; clients reconcile against the store.
const (
	MessageScoresUpdated      = "SCORES_UPDATED"
	MessageLiveSessionUpdated = "LIVE_SESSION_UPDATED"
	MessageDrawStarted        = "DRAW_STARTED"
	MessageStateUpdated       = "STATE_UPDATED"
	MessageTeamsUpdated       = "TEAMS_UPDATED"
)

type Message struct {
	Type     string      `json:"type"`
	Payload  interface{} `json:"payload,omitempty"`
	Category string      `json:"category,omitempty"`
}

// DrawStartedPayload announces a draw so spectator views can run a
// synchronized countdown before the new groups appear.
type DrawStartedPayload struct {
	Category         string `json:"category"`
	Phase            string `json:"phase"`
	CountdownSeconds int    `json:"countdown_seconds"`
}

// Broadcaster is the narrow surface services use to fan events out; the Hub
// implements it, tests substitute a recorder.
type Broadcaster interface {
	BroadcastToCategory(category string, message Message)
	BroadcastAll(message Message)
}
