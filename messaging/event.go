package messaging

import "time"

// EventKind names a committed change to a live match.
type EventKind string

const (
	MatchStarted     EventKind = "match.started"
	MatchFinished    EventKind = "match.finished"
	MatchSuspended   EventKind = "match.suspended"
	MatchRescheduled EventKind = "match.rescheduled"
	MatchUpdated     EventKind = "match.updated"
	MatchDeleted     EventKind = "match.deleted"
	SetStarted       EventKind = "set.started"
	SetCompleted     EventKind = "set.completed"
	PointScored      EventKind = "point.scored"
	PointUndone      EventKind = "point.undone"
	TimeoutRecorded  EventKind = "timeout.recorded"
)

// LiveEvent is the message fanned out to score boards and other consumers.
type LiveEvent struct {
	Kind       EventKind              `json:"kind"`
	MatchID    string                 `json:"match_id"`
	SetNumber  int                    `json:"set_number,omitempty"`
	HomeScore  int                    `json:"home_score"`
	AwayScore  int                    `json:"away_score"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
