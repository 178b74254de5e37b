package draw

import (
	"fmt"
	"testing"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTeams(clubs map[string]int) []models.Team {
	var teams []models.Team
	for club, n := range clubs {
		for i := 0; i < n; i++ {
			teams = append(teams, models.Team{
				ID:   fmt.Sprintf("%s-%d", club, i),
				Name: fmt.Sprintf("%s Team %d", club, i),
				Club: club,
			})
		}
	}
	return teams
}

func TestPlanRejectsTooFewTeams(t *testing.T) {
	p := NewSeededPlanner(1)

	_, err := p.Plan(nil, 2)
	assert.ErrorIs(t, err, ErrTooFewTeams)

	_, err = p.Plan([]models.Team{{ID: "solo"}}, 2)
	assert.ErrorIs(t, err, ErrTooFewTeams)
}

func TestPlanFiveTeamsOfTwo(t *testing.T) {
	p := NewSeededPlanner(42)
	teams := makeTeams(map[string]int{"alpha": 3, "beta": 2})

	plan, err := p.Plan(teams, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, plan.EligibleTeamCount)
	assert.Equal(t, 3, plan.GroupCount)
	assert.Equal(t, []int{2, 2, 1}, plan.GroupSizes)
}

func TestPlanPartitionProperties(t *testing.T) {
	cases := []struct {
		clubs     map[string]int
		groupSize int
	}{
		{map[string]int{"a": 4, "b": 4}, 2},
		{map[string]int{"a": 5, "b": 3, "c": 2}, 3},
		{map[string]int{"a": 1, "b": 1, "c": 1}, 2},
		{map[string]int{"a": 7}, 2},
		{map[string]int{"a": 2, "b": 2, "c": 2, "d": 2}, 4},
	}

	for seed, tc := range cases {
		t.Run(fmt.Sprintf("case_%d", seed), func(t *testing.T) {
			p := NewSeededPlanner(int64(seed))
			teams := makeTeams(tc.clubs)

			plan, err := p.Plan(teams, tc.groupSize)
			require.NoError(t, err)

			// Every team lands in exactly one group.
			total := 0
			seen := make(map[string]bool)
			for _, g := range plan.Groups {
				total += len(g)
				for _, team := range g {
					assert.False(t, seen[team.ID], "team %s drawn twice", team.ID)
					seen[team.ID] = true
				}
			}
			assert.Equal(t, len(teams), total)

			// Sizes are as even as possible.
			minSize, maxSize := plan.GroupSizes[0], plan.GroupSizes[0]
			sum := 0
			for _, s := range plan.GroupSizes {
				sum += s
				if s < minSize {
					minSize = s
				}
				if s > maxSize {
					maxSize = s
				}
			}
			assert.Equal(t, len(teams), sum)
			assert.LessOrEqual(t, maxSize-minSize, 1)

			// Club fairness: same-club collisions only when a club has more
			// teams than there are groups.
			for _, g := range plan.Groups {
				byClub := make(map[string]int)
				for _, team := range g {
					byClub[team.Club]++
				}
				for club, n := range byClub {
					if n > 1 {
						assert.Greater(t, tc.clubs[club], plan.GroupCount,
							"club %s doubled up in a group without being forced", club)
					}
				}
			}
		})
	}
}
