package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSetCompletion(t *testing.T) {
	tests := []struct {
		name       string
		setNumber  int
		home, away int
		wantFailed string
	}{
		{"regular set clean win", 1, 25, 20, ""},
		{"regular set away win", 4, 18, 25, ""},
		{"regular set extended", 2, 30, 28, ""},
		{"regular set below minimum", 1, 24, 20, "minimum"},
		{"regular set one point margin", 3, 25, 24, "margin"},
		{"regular set level at minimum", 2, 25, 25, "margin"},
		{"tiebreak clean win", 5, 15, 13, ""},
		{"tiebreak one point margin", 5, 15, 14, "margin"},
		{"tiebreak below minimum", 5, 14, 10, "minimum"},
		{"tiebreak regular target not needed", 5, 16, 14, ""},
		{"nil score", 1, 0, 0, "minimum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CheckSetCompletion(tt.setNumber, tt.home, tt.away)
			if tt.wantFailed == "" {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, tt.wantFailed, v.Failed)
			assert.Equal(t, tt.home, v.HomeScore)
			assert.Equal(t, tt.away, v.AwayScore)
			assert.Equal(t, WinningMargin, v.RequiredMargin)
		})
	}
}

func TestSetRuleViolationMessage(t *testing.T) {
	v := CheckSetCompletion(1, 24, 20)
	require.NotNil(t, v)
	assert.Equal(t, 25, v.RequiredMinimum)
	assert.Contains(t, v.Error(), "24-20")
	assert.Contains(t, v.Error(), "at least 25 points")

	v = CheckSetCompletion(5, 15, 14)
	require.NotNil(t, v)
	assert.Equal(t, 15, v.RequiredMinimum)
	assert.Contains(t, v.Error(), "lead by at least 2")
}

func TestCountersApply(t *testing.T) {
	var c Counters
	for _, p := range []PointType{Spike, Spike, Block, Ace, Error, Error} {
		assert.False(t, c.Apply(p, 1))
		assert.Equal(t, c.SpikePoints+c.BlockPoints+c.Aces, c.Points())
	}
	assert.Equal(t, Counters{SpikePoints: 2, BlockPoints: 1, Aces: 1, Errors: 2}, c)
	assert.Equal(t, 4, c.Points())

	assert.False(t, c.Apply(Ace, -1))
	assert.True(t, c.Apply(Ace, -1))
	assert.Equal(t, 0, c.Aces)
	assert.Equal(t, 3, c.Points())
}

func TestParsePointType(t *testing.T) {
	p, err := ParsePointType(" spk ")
	require.NoError(t, err)
	assert.Equal(t, Spike, p)
	assert.Equal(t, "Spike", p.Label())

	_, err = ParsePointType("DIG")
	assert.Error(t, err)
	_, err = ParsePointType("")
	assert.Error(t, err)
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("Away")
	require.NoError(t, err)
	assert.Equal(t, Away, s)

	_, err = ParseSide("visitors")
	assert.Error(t, err)
}

func TestTally(t *testing.T) {
	var tally Tally
	tally.Add(25, 20)
	tally.Add(22, 25)
	tally.Add(25, 23)
	_, done := tally.Winner()
	assert.False(t, done)

	tally.Add(26, 24)
	side, done := tally.Winner()
	assert.True(t, done)
	assert.Equal(t, Home, side)
	assert.Equal(t, "3-1", tally.String())
}

func TestStatusTransitions(t *testing.T) {
	s, ok := NormalizeStatus("Upcoming")
	require.True(t, ok)
	assert.Equal(t, StatusScheduled, s)

	_, ok = NormalizeStatus("postponed")
	assert.False(t, ok)

	assert.True(t, CanStart(StatusScheduled))
	assert.True(t, CanStart(StatusUpcoming))
	assert.False(t, CanStart(StatusRescheduled))
	assert.False(t, CanStart(StatusLive))

	assert.True(t, CanSuspend(StatusLive))
	assert.False(t, CanSuspend(StatusScheduled))

	assert.True(t, CanReschedule(StatusSuspended))
	assert.False(t, CanReschedule(StatusFinished))
}
