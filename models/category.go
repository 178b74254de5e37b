package models

// CategoryID is the canonical slug of a competition category. Values are
// produced by the categories package's canonicalizer; raw identifiers from
// requests or stored records must pass through it before comparison.
type CategoryID string

// CompetitionCategory describes one discipline: its canonical slug, short
// type code, ordered phases and whether scoring runs as head-to-head matches
// or sequential single attempts.
type CompetitionCategory struct {
	ID           CategoryID `json:"id"`
	UUID         *string    `json:"uuid,omitempty"`
	Type         string     `json:"type"`
	DisplayName  string     `json:"display_name"`
	Phases       []string   `json:"phases"`
	IsMatchBased bool       `json:"is_match_based"`
}

// PhaseIndex returns the position of phase in the category's ordered phase
// list, or -1 when the phase does not exist.
func (c CompetitionCategory) PhaseIndex(phase string) int {
	for i, p := range c.Phases {
		if p == phase {
			return i
		}
	}
	return -1
}
