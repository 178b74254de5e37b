package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in handlers.
var (
	// Scoring
	ErrCategoryRequired    = errors.New("competition category is required")
	ErrTeamIDRequired      = errors.New("team id is required")
	ErrPhaseRequired       = errors.New("phase is required")
	ErrUnknownPhase        = errors.New("phase does not exist for this category")
	ErrDuplicateSubmission = errors.New("team already has a finalized submission for this phase")
	ErrCategoryNotFound    = errors.New("competition category not found")
	ErrTeamNotFound        = errors.New("team not found")

	// Draws
	ErrDrawTooFewTeams = errors.New("not enough eligible teams for a draw (minimum 2 required)")

	// Live sessions
	ErrSessionNotLive = errors.New("no live session for this category")
)
