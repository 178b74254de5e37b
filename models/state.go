package models

// CompetitionState is the process-wide shared state, persisted locally and
// mirrored remotely on demand. It is mutated only through the state service's
// single update entry point, which re-derives HasLive after every change.
type CompetitionState struct {
	LiveSessions map[CategoryID]LiveSession `json:"live_sessions"`

	// TerminationTimestamps records, per category, the epoch-millisecond
	// instant of the last session end. Any remote session whose start time
	// precedes this instant is a stale echo and is discarded on arrival.
	// Never shown to users.
	TerminationTimestamps map[CategoryID]int64 `json:"termination_timestamps"`

	OrderedCompetitions map[CategoryID]bool `json:"ordered_competitions"`
	ProfilesLocked      bool                `json:"profiles_locked"`
	EventDayStarted     bool                `json:"event_day_started"`

	// HasLive is a legacy convenience flag, always re-derived as
	// len(LiveSessions) > 0.
	HasLive bool `json:"has_live"`
}

func NewCompetitionState() *CompetitionState {
	return &CompetitionState{
		LiveSessions:          make(map[CategoryID]LiveSession),
		TerminationTimestamps: make(map[CategoryID]int64),
		OrderedCompetitions:   make(map[CategoryID]bool),
	}
}

// Normalize ensures all maps are non-nil and the derived flag is consistent.
// Called after hydration from a snapshot and after every mutation.
func (s *CompetitionState) Normalize() {
	if s.LiveSessions == nil {
		s.LiveSessions = make(map[CategoryID]LiveSession)
	}
	if s.TerminationTimestamps == nil {
		s.TerminationTimestamps = make(map[CategoryID]int64)
	}
	if s.OrderedCompetitions == nil {
		s.OrderedCompetitions = make(map[CategoryID]bool)
	}
	s.HasLive = len(s.LiveSessions) > 0
}

// Clone returns a deep copy so readers never alias the live maps.
func (s *CompetitionState) Clone() *CompetitionState {
	out := &CompetitionState{
		LiveSessions:          make(map[CategoryID]LiveSession, len(s.LiveSessions)),
		TerminationTimestamps: make(map[CategoryID]int64, len(s.TerminationTimestamps)),
		OrderedCompetitions:   make(map[CategoryID]bool, len(s.OrderedCompetitions)),
		ProfilesLocked:        s.ProfilesLocked,
		EventDayStarted:       s.EventDayStarted,
		HasLive:               s.HasLive,
	}
	for k, v := range s.LiveSessions {
		out.LiveSessions[k] = v
	}
	for k, v := range s.TerminationTimestamps {
		out.TerminationTimestamps[k] = v
	}
	for k, v := range s.OrderedCompetitions {
		out.OrderedCompetitions[k] = v
	}
	return out
}
