package categories

import "github.com/CharfiNour/enstarobots-server/models"

// Catalog is the static list of disciplines run at the event. Remote records
// may override display metadata, never the slug mapping.
var Catalog = []models.CompetitionCategory{
	{
		ID:          "line_follower",
		Type:        "lf",
		DisplayName: "Line Follower",
		Phases:      []string{"Essay 1", "Essay 2", "Final"},
	},
	{
		ID:          "maze_solver",
		Type:        "ms",
		DisplayName: "Maze Solver",
		Phases:      []string{"Essay 1", "Essay 2"},
	},
	{
		ID:           "all_terrain",
		Type:         "at",
		DisplayName:  "All Terrain",
		Phases:       []string{"Qualifications", "Quarter Final", "Semi Final", "Final"},
		IsMatchBased: true,
	},
	{
		ID:           "robot_fight",
		Type:         "fight",
		DisplayName:  "Robot Fight",
		Phases:       []string{"Qualifications", "Semi Final", "Final"},
		IsMatchBased: true,
	},
	{
		ID:          "junior",
		Type:        "jr",
		DisplayName: "Junior Challenge",
		Phases:      []string{"Essay 1", "Essay 2"},
	},
}

// legacyIDs maps identifiers issued before slugs existed (numeric ids from
// the first edition's database, plus a few short forms that leaked into old
// team records) to canonical slugs.
var legacyIDs = map[string]models.CategoryID{
	"1":            "line_follower",
	"2":            "all_terrain",
	"3":            "maze_solver",
	"4":            "robot_fight",
	"5":            "junior",
	"suiveur":      "line_follower",
	"tout_terrain": "all_terrain",
	"labyrinthe":   "maze_solver",
	"combat":       "robot_fight",
}

// Lookup returns the static catalog entry for a canonical slug.
func Lookup(id models.CategoryID) (models.CompetitionCategory, bool) {
	for _, c := range Catalog {
		if c.ID == id {
			return c, true
		}
	}
	return models.CompetitionCategory{}, false
}

// Merge overlays remote records onto the static catalog. Remote entries whose
// identifier resolves to a known slug override display metadata for that
// slug; unknown remote entries are appended as-is so remotely created
// disciplines still show up.
func Merge(remote []models.CompetitionCategory) []models.CompetitionCategory {
	merged := make([]models.CompetitionCategory, len(Catalog))
	copy(merged, Catalog)

	index := make(map[models.CategoryID]int, len(merged))
	for i, c := range merged {
		index[c.ID] = i
	}

	for _, r := range remote {
		slug := Canonicalize(string(r.ID), nil)
		i, ok := index[slug]
		if !ok {
			r.ID = slug
			merged = append(merged, r)
			index[slug] = len(merged) - 1
			continue
		}
		if r.DisplayName != "" {
			merged[i].DisplayName = r.DisplayName
		}
		if r.UUID != nil {
			merged[i].UUID = r.UUID
		}
		if len(r.Phases) > 0 {
			merged[i].Phases = r.Phases
		}
	}
	return merged
}
