package models

import (
	"time"

	"gorm.io/datatypes"

	"volleyball-live-system/scoring"
)

// PlayerPerformance holds one player's counters for a match.
//
// SetID nil marks the match-level row created when the match starts; it is a
// participation marker and stays at zero. Rows with SetID set carry the
// counters recorded during that set, and match totals are always the sum of
// those set-level rows. Uniqueness per granularity is enforced by the
// partial indexes in Migrate.
type PlayerPerformance struct {
	ID       string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PlayerID string  `gorm:"type:uuid;not null;index" json:"player_id"`
	Player   *Player `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	MatchID  string  `gorm:"type:uuid;not null;index" json:"match_id"`
	SetID    *string `gorm:"type:uuid;index" json:"set_id,omitempty"`

	SpikePoints int `gorm:"not null;default:0;check:spike_points >= 0" json:"spike_points"`
	BlockPoints int `gorm:"not null;default:0;check:block_points >= 0" json:"block_points"`
	Aces        int `gorm:"not null;default:0;check:aces >= 0" json:"aces"`
	Errors      int `gorm:"not null;default:0;check:errors >= 0" json:"errors"`
	Points      int `gorm:"not null;default:0" json:"points"` // spike_points + block_points + aces

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (p *PlayerPerformance) Counters() scoring.Counters {
	return scoring.Counters{
		SpikePoints: p.SpikePoints,
		BlockPoints: p.BlockPoints,
		Aces:        p.Aces,
		Errors:      p.Errors,
	}
}

// SetCounters copies c and recomputes Points from it.
func (p *PlayerPerformance) SetCounters(c scoring.Counters) {
	p.SpikePoints = c.SpikePoints
	p.BlockPoints = c.BlockPoints
	p.Aces = c.Aces
	p.Errors = c.Errors
	p.Points = c.Points()
}

// PointEvent is an immutable ledger entry. Rally points carry a player and
// point type; the entry closing a set carries neither.
type PointEvent struct {
	ID             string    `gorm:"primaryKey;type:char(26)" json:"id"` // ULID
	MatchID        string    `gorm:"type:uuid;not null;index:idx_point_events_undo,priority:1" json:"match_id"`
	SetID          string    `gorm:"type:uuid;not null;index:idx_point_events_undo,priority:2" json:"set_id"`
	PlayerID       *string   `gorm:"type:uuid;index:idx_point_events_undo,priority:3" json:"player_id,omitempty"`
	PointType      *string   `gorm:"type:varchar(3);index:idx_point_events_undo,priority:4" json:"point_type,omitempty"`
	TeamID         string    `gorm:"type:uuid;not null" json:"team_id"`
	Timestamp      time.Time `gorm:"not null;index:idx_point_events_undo,priority:5" json:"timestamp"`
	HomeScoreAfter int       `gorm:"not null" json:"home_score_after"`
	AwayScoreAfter int       `gorm:"not null" json:"away_score_after"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// MatchReport is the archived summary of a finished match. Digest is the
// SHA-256 of the canonical JSON payload.
type MatchReport struct {
	ID        string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MatchID   string         `gorm:"type:uuid;not null;uniqueIndex:idx_match_reports_digest" json:"match_id"`
	Digest    string         `gorm:"type:char(64);not null;uniqueIndex:idx_match_reports_digest" json:"digest"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	ObjectKey string         `json:"object_key,omitempty"`
	URL       string         `json:"url,omitempty"`

	Timestamps
}

// StatisticsSnapshot persists the cross-match statistics computed at Version.
type StatisticsSnapshot struct {
	ID         string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Version    int64          `gorm:"not null;index" json:"version"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	ComputedAt time.Time      `gorm:"not null" json:"computed_at"`
}
