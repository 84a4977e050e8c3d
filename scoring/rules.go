// Package scoring holds the volleyball rules the match services enforce:
// lifecycle transitions, point type mapping, set completion and the
// sets-won tally. Nothing in here touches storage.
package scoring

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusLive        Status = "live"
	StatusSuspended   Status = "suspended"
	StatusRescheduled Status = "rescheduled"
	StatusFinished    Status = "finished"

	// StatusUpcoming is accepted on input and treated as scheduled.
	StatusUpcoming Status = "upcoming"
)

// NormalizeStatus folds aliases and reports whether s is a known status.
func NormalizeStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusScheduled, StatusUpcoming:
		return StatusScheduled, true
	case StatusLive:
		return StatusLive, true
	case StatusSuspended:
		return StatusSuspended, true
	case StatusRescheduled:
		return StatusRescheduled, true
	case StatusFinished:
		return StatusFinished, true
	}
	return "", false
}

func CanStart(s Status) bool {
	return s == StatusScheduled || s == StatusUpcoming
}

func CanEnd(s Status) bool {
	return s == StatusLive
}

func CanSuspend(s Status) bool {
	return s == StatusLive
}

// CanReschedule allows every state except finished. A rescheduled match
// never moves back to scheduled or live.
func CanReschedule(s Status) bool {
	return s != StatusFinished
}

// Side identifies home or away.
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Home:
		return Home, nil
	case Away:
		return Away, nil
	}
	return "", fmt.Errorf("team must be %q or %q, got %q", Home, Away, s)
}

// PointType is the rally outcome credited to a player.
type PointType string

const (
	Spike PointType = "SPK"
	Block PointType = "BLK"
	Ace   PointType = "ACE"
	Error PointType = "ERR"
)

var pointLabels = map[PointType]string{
	Spike: "spike",
	Block: "block",
	Ace:   "ace",
	Error: "error",
}

func ParsePointType(s string) (PointType, error) {
	p := PointType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := pointLabels[p]; !ok {
		return "", fmt.Errorf("point_type must be one of SPK, BLK, ACE, ERR, got %q", s)
	}
	return p, nil
}

var titleCaser = cases.Title(language.English)

// Label is the display name used in ledger descriptions ("Spike").
func (p PointType) Label() string {
	return titleCaser.String(pointLabels[p])
}

// Counters are the per-player statistics a point type maps onto.
type Counters struct {
	SpikePoints int `json:"spike_points"`
	BlockPoints int `json:"block_points"`
	Aces        int `json:"aces"`
	Errors      int `json:"errors"`
}

// Points excludes errors.
func (c Counters) Points() int {
	return c.SpikePoints + c.BlockPoints + c.Aces
}

// Apply adds delta to the counter mapped from p, flooring at zero.
// It reports whether the floor was hit.
func (c *Counters) Apply(p PointType, delta int) (clamped bool) {
	var field *int
	switch p {
	case Spike:
		field = &c.SpikePoints
	case Block:
		field = &c.BlockPoints
	case Ace:
		field = &c.Aces
	case Error:
		field = &c.Errors
	default:
		return false
	}
	*field += delta
	if *field < 0 {
		*field = 0
		return true
	}
	return false
}

const (
	SetsToWin      = 3
	MaxSets        = 5
	TiebreakSet    = 5
	RegularTarget  = 25
	TiebreakTarget = 15
	WinningMargin  = 2
)

// Requirement returns the minimum winning score and margin for a set.
func Requirement(setNumber int) (minimum, margin int) {
	if setNumber == TiebreakSet {
		return TiebreakTarget, WinningMargin
	}
	return RegularTarget, WinningMargin
}

// SetRuleViolation explains why a score cannot close a set.
type SetRuleViolation struct {
	SetNumber       int    `json:"set_number"`
	HomeScore       int    `json:"home_score"`
	AwayScore       int    `json:"away_score"`
	RequiredMinimum int    `json:"required_minimum"`
	RequiredMargin  int    `json:"required_margin"`
	Failed          string `json:"failed"` // "minimum" or "margin"
}

func (v *SetRuleViolation) Error() string {
	if v.Failed == "minimum" {
		return fmt.Sprintf("set %d cannot end at %d-%d: a team needs at least %d points",
			v.SetNumber, v.HomeScore, v.AwayScore, v.RequiredMinimum)
	}
	return fmt.Sprintf("set %d cannot end at %d-%d: a team needs to lead by at least %d points",
		v.SetNumber, v.HomeScore, v.AwayScore, v.RequiredMargin)
}

// CheckSetCompletion returns nil when home-away is a valid final score.
func CheckSetCompletion(setNumber, home, away int) *SetRuleViolation {
	minimum, margin := Requirement(setNumber)
	hi, lo := home, away
	if lo > hi {
		hi, lo = lo, hi
	}

	v := &SetRuleViolation{
		SetNumber:       setNumber,
		HomeScore:       home,
		AwayScore:       away,
		RequiredMinimum: minimum,
		RequiredMargin:  margin,
	}
	switch {
	case hi < minimum:
		v.Failed = "minimum"
		return v
	case hi-lo < margin:
		v.Failed = "margin"
		return v
	}
	return nil
}

// SetWinner returns the side leading the score, false on a tie.
func SetWinner(home, away int) (Side, bool) {
	switch {
	case home > away:
		return Home, true
	case away > home:
		return Away, true
	}
	return "", false
}

// Tally counts sets won per side.
type Tally struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Add credits the winner of a closed set.
func (t *Tally) Add(home, away int) {
	if side, ok := SetWinner(home, away); ok {
		if side == Home {
			t.Home++
		} else {
			t.Away++
		}
	}
}

// Winner reports the side that has reached SetsToWin.
func (t Tally) Winner() (Side, bool) {
	switch {
	case t.Home >= SetsToWin:
		return Home, true
	case t.Away >= SetsToWin:
		return Away, true
	}
	return "", false
}

func (t Tally) String() string {
	return fmt.Sprintf("%d-%d", t.Home, t.Away)
}
