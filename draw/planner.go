// Package draw partitions eligible teams into balanced, club-interleaved
// match groups for one phase of a competition.
package draw

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/CharfiNour/enstarobots-server/models"
)

var ErrTooFewTeams = errors.New("draw requires at least 2 eligible teams")

type Planner struct {
	rng *rand.Rand
}

// NewPlanner returns a planner with a time-seeded shuffle source.
func NewPlanner() *Planner {
	return NewSeededPlanner(time.Now().UnixNano())
}

// NewSeededPlanner fixes the shuffle seed; tests use it for reproducible
// partitions.
func NewSeededPlanner(seed int64) *Planner {
	return &Planner{rng: rand.New(rand.NewSource(seed))}
}

// Plan partitions teams into ceil(N/groupSize) groups. Teams from the same
// club are spread as far apart as possible: teams are bucketed by club,
// shuffled within each bucket, then taken round-robin across clubs before
// the interleaved sequence is cut into evenly sized groups. No state is
// touched; execution of the plan is a separate, side-effecting step.
func (p *Planner) Plan(teams []models.Team, groupSize int) (*models.DrawPlan, error) {
	if groupSize < 2 {
		groupSize = 2
	}
	if len(teams) < 2 {
		return nil, ErrTooFewTeams
	}

	ordered := p.interleaveByClub(teams)

	n := len(ordered)
	groupCount := (n + groupSize - 1) / groupSize

	plan := &models.DrawPlan{
		EligibleTeamCount: n,
		GroupCount:        groupCount,
		GroupSizes:        make([]int, 0, groupCount),
		Groups:            make([][]models.Team, 0, groupCount),
	}

	// Even split: each group takes ceil(remaining/groupsLeft), so late
	// groups are never starved while early ones run overfull.
	consumed := 0
	for g := 0; g < groupCount; g++ {
		remaining := n - consumed
		groupsLeft := groupCount - g
		size := (remaining + groupsLeft - 1) / groupsLeft
		plan.GroupSizes = append(plan.GroupSizes, size)
		plan.Groups = append(plan.Groups, ordered[consumed:consumed+size])
		consumed += size
	}

	return plan, nil
}

// interleaveByClub produces a sequence that maximizes the distance between
// teams of the same club.
func (p *Planner) interleaveByClub(teams []models.Team) []models.Team {
	buckets := make(map[string][]models.Team)
	for _, t := range teams {
		buckets[t.Club] = append(buckets[t.Club], t)
	}

	clubs := make([]string, 0, len(buckets))
	for club := range buckets {
		clubs = append(clubs, club)
	}
	// Map order is random but not uniformly so; sort then shuffle for a fair
	// club ordering, then put larger clubs first so their repeats get the
	// widest spacing once smaller clubs run dry.
	sort.Strings(clubs)
	p.rng.Shuffle(len(clubs), func(i, j int) {
		clubs[i], clubs[j] = clubs[j], clubs[i]
	})
	sort.SliceStable(clubs, func(i, j int) bool {
		return len(buckets[clubs[i]]) > len(buckets[clubs[j]])
	})
	for _, club := range clubs {
		bucket := buckets[club]
		p.rng.Shuffle(len(bucket), func(i, j int) {
			bucket[i], bucket[j] = bucket[j], bucket[i]
		})
	}

	ordered := make([]models.Team, 0, len(teams))
	for len(ordered) < len(teams) {
		for _, club := range clubs {
			bucket := buckets[club]
			if len(bucket) == 0 {
				continue
			}
			ordered = append(ordered, bucket[0])
			buckets[club] = bucket[1:]
		}
	}
	return ordered
}
