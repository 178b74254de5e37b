package categories

import (
	"testing"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	uuid := "7f9c24e5-2c3a-4d6e-9f0a-1b2c3d4e5f6a"
	remote := []models.CompetitionCategory{
		{ID: "line_follower", UUID: &uuid, DisplayName: "Line Follower"},
		{ID: "Drone_Race", DisplayName: "Drone Race"},
	}

	tests := []struct {
		name string
		raw  string
		want models.CategoryID
	}{
		{"canonical slug passes through", "line_follower", "line_follower"},
		{"catalog type code", "lf", "line_follower"},
		{"catalog type code match based", "at", "all_terrain"},
		{"remote id case-insensitive", "LINE_FOLLOWER", "line_follower"},
		{"remote uuid", uuid, "line_follower"},
		{"display name", "Line Follower", "line_follower"},
		{"display name case-insensitive", "aLL tErrain", "all_terrain"},
		{"legacy numeric id", "2", "all_terrain"},
		{"legacy french alias", "tout_terrain", "all_terrain"},
		{"remote-only category", "Drone_Race", "drone_race"},
		{"whitespace trimmed", "  maze_solver  ", "maze_solver"},
		{"unknown falls back to normalized input", "Mystery Event", "mystery event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.raw, remote))
		})
	}
}

// A false negative silently splits one category's data in two, so the
// function must be total.
func TestCanonicalizeNeverEmptyForNonEmptyInput(t *testing.T) {
	for _, raw := range []string{"x", "42", "UNKNOWN-THING", "Ligne Suiveuse 2024"} {
		got := Canonicalize(raw, nil)
		assert.NotEmpty(t, got, "input %q", raw)
	}
	assert.Equal(t, models.CategoryID(""), Canonicalize("   ", nil))
}

func TestMergeOverridesDisplayMetadataOnly(t *testing.T) {
	uuid := "abc-123"
	merged := Merge([]models.CompetitionCategory{
		{ID: "1", UUID: &uuid, DisplayName: "Suiveur de Ligne"},
	})

	var lineFollower *models.CompetitionCategory
	for i := range merged {
		if merged[i].ID == "line_follower" {
			lineFollower = &merged[i]
		}
	}
	if assert.NotNil(t, lineFollower) {
		assert.Equal(t, "Suiveur de Ligne", lineFollower.DisplayName)
		assert.Equal(t, &uuid, lineFollower.UUID)
		// The legacy remote id never displaces the canonical slug.
		assert.Equal(t, models.CategoryID("line_follower"), lineFollower.ID)
	}

	// No duplicate entry was appended for the legacy id.
	count := 0
	for _, c := range merged {
		if c.ID == "line_follower" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
