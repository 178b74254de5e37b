package models

import "time"

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Club      string    `json:"club,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Categories holds the raw category assignments as registered; they are
	// canonicalized at the point of use.
	Categories []string `json:"categories"`

	// Placeholder teams are seeded slots without a real registration and are
	// excluded from draws.
	Placeholder bool `json:"placeholder,omitempty"`
}

// AssignedTo reports whether the team is registered in the given category.
// resolve maps a raw assignment to its canonical slug.
func (t Team) AssignedTo(category CategoryID, resolve func(string) CategoryID) bool {
	for _, raw := range t.Categories {
		if resolve(raw) == category {
			return true
		}
	}
	return false
}
