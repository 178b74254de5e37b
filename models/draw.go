package models

// DrawPlan is the computed preview of a draw. It is never persisted; only
// its execution (creation of pending score placeholders) is.
type DrawPlan struct {
	EligibleTeamCount int      `json:"eligible_team_count"`
	GroupSizes        []int    `json:"group_sizes"`
	GroupCount        int      `json:"group_count"`
	Groups            [][]Team `json:"groups"`
}
