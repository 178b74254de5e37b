package models

import "time"

// LiveSession marks the team currently on stage for one category. Volatile:
// created on "start match", deleted on "end match", never historical.
type LiveSession struct {
	TeamID       string     `json:"team_id"`
	Phase        string     `json:"phase"`
	StartTime    time.Time  `json:"start_time"`
	ScoreSummary *string    `json:"score_summary,omitempty"`
	LastUpdate   *time.Time `json:"last_update,omitempty"`
}
