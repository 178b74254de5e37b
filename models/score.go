package models

import "time"

// ScoreStatus mirrors the lifecycle of a submission inside one phase.
type ScoreStatus string

const (
	ScoreStatusPending    ScoreStatus = "pending"
	ScoreStatusValidated  ScoreStatus = "validated"
	ScoreStatusWinner     ScoreStatus = "winner"
	ScoreStatusQualified  ScoreStatus = "qualified"
	ScoreStatusEliminated ScoreStatus = "eliminated"
	ScoreStatusDraw       ScoreStatus = "draw"
)

// ScoreSubmission is an immutable scoring fact, replaced only by a full
// upsert keyed on ID. Timestamp is the authoritative ordering key: when a
// team re-submits, the latest submission by Timestamp wins for status and
// points purposes; earlier ones stay as history.
type ScoreSubmission struct {
	ID                  string         `json:"id"`
	MatchID             *string        `json:"match_id,omitempty"`
	TeamID              string         `json:"team_id"`
	CompetitionCategory string         `json:"competition_category"`
	Phase               string         `json:"phase"`
	TotalPoints         float64        `json:"total_points"`
	Status              ScoreStatus    `json:"status"`
	Timestamp           time.Time      `json:"timestamp"`
	DetailedScores      map[string]any `json:"detailed_scores,omitempty"`
	IsVisibleToTeam     bool           `json:"is_visible_to_team"`
}

// IsPending reports whether the submission still awaits a jury decision.
// An empty status counts as pending for phase-gating purposes.
func (s ScoreSubmission) IsPending() bool {
	return s.Status == "" || s.Status == ScoreStatusPending
}

// Finalized reports whether the submission carries a terminal jury decision.
func (s ScoreSubmission) Finalized() bool {
	switch s.Status {
	case ScoreStatusValidated, ScoreStatusWinner, ScoreStatusQualified, ScoreStatusEliminated, ScoreStatusDraw:
		return true
	}
	return false
}
