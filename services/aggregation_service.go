package services

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/CharfiNour/enstarobots-server/categories"
	"github.com/CharfiNour/enstarobots-server/models"
)

// AggregationService folds a flat list of score submissions into match and
// single groups. Groups are a view: recomputed on every call, never stored.
type AggregationService struct {
	logger *slog.Logger
}

func NewAggregationService(logger *slog.Logger) *AggregationService {
	return &AggregationService{logger: logger}
}

// Aggregate builds the group view for the given inputs.
//
// Ordering is deliberately pinned to each group's earliest submission
// timestamp: a later score correction must not reshuffle which match shows
// as "GROUP 1" while juries are editing bracket slots mid-tournament.
func (s *AggregationService) Aggregate(
	submissions []models.ScoreSubmission,
	teams []models.Team,
	cats []models.CompetitionCategory,
) []models.Group {
	resolve := categories.Resolver(cats)

	catIndex := make(map[models.CategoryID]models.CompetitionCategory, len(cats))
	for _, c := range cats {
		catIndex[resolve(string(c.ID))] = c
	}
	teamIndex := make(map[string]*models.Team, len(teams))
	for i := range teams {
		teamIndex[teams[i].ID] = &teams[i]
	}

	deduped := dedupeByID(submissions)

	type matchKey struct {
		category models.CategoryID
		matchID  string
	}
	type singleKey struct {
		category models.CategoryID
		teamID   string
	}

	matchGroups := make(map[matchKey]*models.Group)
	singleGroups := make(map[singleKey]*models.Group)
	var matchOrder []matchKey
	var singleOrder []singleKey

	for _, sub := range deduped {
		teamPtr, ok := teamIndex[sub.TeamID]
		if !ok {
			s.logger.Warn("dropping submission for unknown team",
				slog.String("submission_id", sub.ID),
				slog.String("team_id", sub.TeamID))
			continue
		}

		category := resolve(sub.CompetitionCategory)
		cat := catIndex[category]

		// A category can be match-based in general while a given submission
		// is still single when its match id is absent.
		isMatch := cat.IsMatchBased && sub.MatchID != nil && *sub.MatchID != ""

		if isMatch {
			key := matchKey{category: category, matchID: *sub.MatchID}
			group, ok := matchGroups[key]
			if !ok {
				group = &models.Group{
					Category:        category,
					MatchID:         *sub.MatchID,
					FirstTimestamp:  sub.Timestamp,
					LatestTimestamp: sub.Timestamp,
				}
				matchGroups[key] = group
				matchOrder = append(matchOrder, key)
			}
			appendMatchSubmission(group, teamPtr, sub)
			widenTimestamps(group, sub)
		} else {
			key := singleKey{category: category, teamID: sub.TeamID}
			group, ok := singleGroups[key]
			if !ok {
				group = &models.Group{
					Category:        category,
					TeamID:          sub.TeamID,
					Team:            teamPtr,
					FirstTimestamp:  sub.Timestamp,
					LatestTimestamp: sub.Timestamp,
				}
				singleGroups[key] = group
				singleOrder = append(singleOrder, key)
			}
			group.Submissions = append(group.Submissions, sub)
			widenTimestamps(group, sub)
		}
	}

	// Inject empty single groups so the roster stays complete before any
	// scoring happens. A team already inside a match group of the category
	// is not duplicated.
	for i := range teams {
		team := &teams[i]
		for _, raw := range team.Categories {
			category := resolve(raw)
			if category == "" {
				continue
			}
			if _, ok := singleGroups[singleKey{category: category, teamID: team.ID}]; ok {
				continue
			}
			inMatch := false
			for _, key := range matchOrder {
				if key.category == category && matchGroups[key].ContainsTeam(team.ID) {
					inMatch = true
					break
				}
			}
			if inMatch {
				continue
			}
			key := singleKey{category: category, teamID: team.ID}
			singleGroups[key] = &models.Group{
				Category:    category,
				TeamID:      team.ID,
				Team:        team,
				Submissions: []models.ScoreSubmission{},
			}
			singleOrder = append(singleOrder, key)
		}
	}

	groups := make([]models.Group, 0, len(matchOrder)+len(singleOrder))
	for _, key := range matchOrder {
		groups = append(groups, *matchGroups[key])
	}
	for _, key := range singleOrder {
		groups = append(groups, *singleGroups[key])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groupLess(groups[i], groups[j])
	})

	// Positional labels over the sorted match subsequence.
	label := 0
	for i := range groups {
		if groups[i].IsMatch() {
			label++
			groups[i].Label = fmt.Sprintf("GROUP %d", label)
		}
	}

	return groups
}

// AggregateCategory filters the group view down to one category.
func (s *AggregationService) AggregateCategory(
	category models.CategoryID,
	submissions []models.ScoreSubmission,
	teams []models.Team,
	cats []models.CompetitionCategory,
) []models.Group {
	all := s.Aggregate(submissions, teams, cats)
	out := make([]models.Group, 0, len(all))
	label := 0
	for _, g := range all {
		if g.Category != category {
			continue
		}
		// Relabel within the category so spectators see GROUP 1..n.
		if g.IsMatch() {
			label++
			g.Label = fmt.Sprintf("GROUP %d", label)
		}
		out = append(out, g)
	}
	return out
}

// dedupeByID keeps the last occurrence of each submission id, preserving the
// relative order of the survivors.
func dedupeByID(submissions []models.ScoreSubmission) []models.ScoreSubmission {
	last := make(map[string]int, len(submissions))
	for i, sub := range submissions {
		last[sub.ID] = i
	}
	out := make([]models.ScoreSubmission, 0, len(last))
	for i, sub := range submissions {
		if last[sub.ID] == i {
			out = append(out, sub)
		}
	}
	return out
}

func appendMatchSubmission(group *models.Group, team *models.Team, sub models.ScoreSubmission) {
	for i := range group.Participants {
		if group.Participants[i].TeamID == sub.TeamID {
			group.Participants[i].Submissions = append(group.Participants[i].Submissions, sub)
			return
		}
	}
	group.Participants = append(group.Participants, models.GroupParticipant{
		TeamID:      sub.TeamID,
		Team:        team,
		Submissions: []models.ScoreSubmission{sub},
	})
}

func widenTimestamps(group *models.Group, sub models.ScoreSubmission) {
	if sub.Timestamp.Before(group.FirstTimestamp) {
		group.FirstTimestamp = sub.Timestamp
	}
	if sub.Timestamp.After(group.LatestTimestamp) {
		group.LatestTimestamp = sub.Timestamp
	}
}

// groupLess orders match groups before single groups, then by earliest
// activity, then by latest activity, then by display name.
func groupLess(a, b models.Group) bool {
	if a.IsMatch() != b.IsMatch() {
		return a.IsMatch()
	}
	if !a.FirstTimestamp.Equal(b.FirstTimestamp) {
		// Empty groups (zero timestamp) sort after scored ones.
		if a.FirstTimestamp.IsZero() || b.FirstTimestamp.IsZero() {
			return b.FirstTimestamp.IsZero()
		}
		return a.FirstTimestamp.Before(b.FirstTimestamp)
	}
	if !a.LatestTimestamp.Equal(b.LatestTimestamp) {
		return a.LatestTimestamp.Before(b.LatestTimestamp)
	}
	return groupDisplayName(a) < groupDisplayName(b)
}

func groupDisplayName(g models.Group) string {
	if g.IsMatch() {
		return g.MatchID
	}
	if g.Team != nil && g.Team.Name != "" {
		return g.Team.Name
	}
	return g.TeamID
}
