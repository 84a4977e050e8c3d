package models

import (
	"time"

	"volleyball-live-system/scoring"
)

// Match is one fixture between two teams. StartTime is written once on the
// move to live; EndTime and DurationSec once on the move to finished.
type Match struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	HomeTeamID string `gorm:"type:uuid;not null;index" json:"home_team_id"`
	HomeTeam   *Team  `gorm:"foreignKey:HomeTeamID" json:"home_team,omitempty"`
	AwayTeamID string `gorm:"type:uuid;not null;index;check:chk_matches_distinct_teams,home_team_id <> away_team_id" json:"away_team_id"`
	AwayTeam   *Team  `gorm:"foreignKey:AwayTeamID" json:"away_team,omitempty"`

	Date      time.Time `gorm:"not null;index" json:"date"`
	Location  string    `json:"location"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`

	Status scoring.Status `gorm:"type:varchar(16);not null;default:scheduled;index" json:"status"` // scheduled, live, suspended, rescheduled, finished

	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	DurationSec *int64     `json:"duration_sec,omitempty"`

	TotalSpectators int    `gorm:"default:0" json:"total_spectators"`
	MatchNotes      string `json:"match_notes"`

	// Legacy whole-match counters, incremented alongside the per-set ones.
	HomeTimeouts int `gorm:"default:0" json:"home_timeouts"`
	AwayTimeouts int `gorm:"default:0" json:"away_timeouts"`

	Sets        []Set        `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE" json:"sets,omitempty"`
	PointEvents []PointEvent `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE" json:"-"`

	Timestamps
}

// TeamID returns the team playing on side.
func (m *Match) TeamID(side scoring.Side) string {
	if side == scoring.Away {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

// SideOf reports which side teamID plays on.
func (m *Match) SideOf(teamID string) (scoring.Side, bool) {
	switch teamID {
	case m.HomeTeamID:
		return scoring.Home, true
	case m.AwayTeamID:
		return scoring.Away, true
	}
	return "", false
}

// Set is one game within a match. At most one set per match is open
// (EndTime nil) at a time.
type Set struct {
	ID           string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MatchID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_sets_match_number" json:"match_id"`
	SetNumber    int        `gorm:"not null;uniqueIndex:idx_sets_match_number;check:set_number > 0" json:"set_number"`
	HomeScore    int        `gorm:"not null;default:0;check:home_score >= 0" json:"home_score"`
	AwayScore    int        `gorm:"not null;default:0;check:away_score >= 0" json:"away_score"`
	HomeTimeouts int        `gorm:"not null;default:0;check:home_timeouts BETWEEN 0 AND 2" json:"home_timeouts"`
	AwayTimeouts int        `gorm:"not null;default:0;check:away_timeouts BETWEEN 0 AND 2" json:"away_timeouts"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	DurationSec  *int64     `json:"duration_sec,omitempty"`

	PointEvents []PointEvent `gorm:"foreignKey:SetID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Set) TableName() string { return "match_sets" }

func (s *Set) IsOpen() bool { return s.EndTime == nil }

func (s *Set) Score(side scoring.Side) int {
	if side == scoring.Away {
		return s.AwayScore
	}
	return s.HomeScore
}

// Timeouts returns a pointer to the per-set timeout counter of side.
func (s *Set) Timeouts(side scoring.Side) *int {
	if side == scoring.Away {
		return &s.AwayTimeouts
	}
	return &s.HomeTimeouts
}

// Weather is a reading attached to a match, polled or entered by hand.
type Weather struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	MatchID     string    `gorm:"type:uuid;not null;index" json:"match_id"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Condition   string    `gorm:"type:varchar(64)" json:"condition"`
	Source      string    `gorm:"type:varchar(32);default:manual" json:"source"` // manual, open-meteo
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Weather) TableName() string { return "weather" }
