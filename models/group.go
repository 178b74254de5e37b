package models

import "time"

// GroupParticipant is one team's slice of a match group.
type GroupParticipant struct {
	TeamID      string            `json:"team_id"`
	Team        *Team             `json:"team,omitempty"`
	Submissions []ScoreSubmission `json:"submissions"`
}

// Group is a derived view over submissions, recomputed on every data change
// and never persisted. A match group holds N participants sharing one match
// identifier; a single group holds one team's sequential attempts. A team
// appears in exactly one group per category.
type Group struct {
	Category CategoryID `json:"category"`

	// MatchID is set for match groups only.
	MatchID string `json:"match_id,omitempty"`
	// Label is the positional display name ("GROUP 1", ...) of a match
	// group, assigned fresh on every aggregation pass.
	Label        string             `json:"label,omitempty"`
	Participants []GroupParticipant `json:"participants,omitempty"`

	// TeamID, Team and Submissions are set for single groups only.
	TeamID      string            `json:"team_id,omitempty"`
	Team        *Team             `json:"team,omitempty"`
	Submissions []ScoreSubmission `json:"submissions,omitempty"`

	// FirstTimestamp is the earliest submission timestamp seen; it pins the
	// group's display position so later corrections never reshuffle labels.
	FirstTimestamp  time.Time `json:"first_timestamp"`
	LatestTimestamp time.Time `json:"latest_timestamp"`
}

func (g Group) IsMatch() bool {
	return g.MatchID != ""
}

// HasPhase reports whether any submission in the group is tagged with phase.
func (g Group) HasPhase(phase string) bool {
	for _, s := range g.Submissions {
		if s.Phase == phase {
			return true
		}
	}
	for _, p := range g.Participants {
		for _, s := range p.Submissions {
			if s.Phase == phase {
				return true
			}
		}
	}
	return false
}

// ContainsTeam reports whether the team is part of this group.
func (g Group) ContainsTeam(teamID string) bool {
	if g.TeamID == teamID {
		return true
	}
	for _, p := range g.Participants {
		if p.TeamID == teamID {
			return true
		}
	}
	return false
}
