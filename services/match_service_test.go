package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volleyball-live-system/apperr"
	"volleyball-live-system/messaging"
	"volleyball-live-system/models"
	"volleyball-live-system/scoring"
	"volleyball-live-system/services"
)

func TestScoreAndUndoScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started, err := f.svc.StartMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, started.MatchData.CurrentSet)
	assert.Len(t, started.MatchData.PlayerPerformances, 4)

	detail, err := f.svc.GetMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, scoring.StatusLive, detail.Status)
	require.NotNil(t, detail.CurrentSet)
	assert.Equal(t, 1, detail.CurrentSet.SetNumber)

	a1 := f.homePlayers[0]
	in := services.RecordPointInput{SetNumber: 1, PlayerID: a1.ID, PointType: "SPK"}

	scored, err := f.svc.RecordPoint(ctx, f.match.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 1, scored.HomeScore)
	assert.Equal(t, 0, scored.AwayScore)
	assert.Equal(t, 1, scored.PlayerPerformance.Points)
	assert.Equal(t, 1, scored.PlayerPerformance.SpikePoints)
	require.NotNil(t, scored.Event)
	assert.Contains(t, scored.Event.Description, "Point by Spike from player "+a1.Name)

	in.Undo = true
	undone, err := f.svc.RecordPoint(ctx, f.match.ID, in)
	require.NoError(t, err)
	assert.True(t, undone.Undo)
	assert.False(t, undone.Clamped)
	assert.Equal(t, 0, undone.HomeScore)
	assert.Equal(t, 0, undone.PlayerPerformance.Points)

	events, err := f.svc.ListPointEvents(ctx, f.match.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.Equal(t, []messaging.EventKind{
		messaging.MatchStarted, messaging.PointScored, messaging.PointUndone,
	}, f.publisher.kinds())
}

func TestStartMatchIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)

	_, err := f.svc.StartMatch(ctx, f.match.ID)
	assert.True(t, apperr.IsInvalidState(err), "a live match cannot be started again: %v", err)

	// Force the match back to scheduled and start it again.
	require.NoError(t, f.db.Model(&models.Match{}).Where("id = ?", f.match.ID).
		Update("status", scoring.StatusScheduled).Error)
	_, err = f.svc.StartMatch(ctx, f.match.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.count(t, &models.Set{}, "match_id = ?", f.match.ID))
	assert.EqualValues(t, 4, f.count(t, &models.PlayerPerformance{}, "match_id = ? AND set_id IS NULL", f.match.ID))
}

func TestStartMatchAcceptsUpcomingAlias(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Match{}).Where("id = ?", f.match.ID).
		Update("status", scoring.StatusUpcoming).Error)

	_, err := f.svc.StartMatch(context.Background(), f.match.ID)
	require.NoError(t, err)
}

func TestMatchLifecycleTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.SuspendMatch(ctx, f.match.ID)
	assert.True(t, apperr.IsInvalidState(err))

	_, err = f.svc.EndMatch(ctx, f.match.ID)
	assert.True(t, apperr.IsInvalidState(err), "a match that never started cannot end")

	f.start(t)
	require.NoError(t, f.svc.SuspendMatch(ctx, f.match.ID))

	_, err = f.svc.RecordPoint(ctx, f.match.ID, services.RecordPointInput{
		SetNumber: 1, PlayerID: f.homePlayers[0].ID, PointType: "ACE",
	})
	assert.True(t, apperr.IsInvalidState(err), "scoring needs a live match")

	newDate := time.Date(2031, 3, 14, 19, 30, 0, 0, time.UTC)
	got, err := f.svc.RescheduleMatch(ctx, f.match.ID, newDate)
	require.NoError(t, err)
	assert.True(t, newDate.Equal(got))

	detail, err := f.svc.GetMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, scoring.StatusRescheduled, detail.Status)
	assert.True(t, newDate.Equal(detail.Date))

	_, err = f.svc.StartMatch(ctx, f.match.ID)
	assert.True(t, apperr.IsInvalidState(err), "rescheduled does not transition back")

	_, err = f.svc.RescheduleMatch(ctx, f.match.ID, time.Time{})
	assert.True(t, apperr.IsValidation(err))
}

func TestEndMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)

	res, err := f.svc.EndMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.DurationSec, int64(0))

	detail, err := f.svc.GetMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, scoring.StatusFinished, detail.Status)
	require.NotNil(t, detail.EndTime)
	require.NotNil(t, detail.DurationSec)

	_, err = f.svc.EndMatch(ctx, f.match.ID)
	assert.True(t, apperr.IsInvalidState(err))

	_, err = f.svc.RescheduleMatch(ctx, f.match.ID, time.Now().Add(time.Hour))
	assert.True(t, apperr.IsInvalidState(err), "finished matches cannot be rescheduled")
}

func TestCreateMatchValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    services.CreateMatchInput
		check func(error) bool
	}{
		{"same team", services.CreateMatchInput{HomeTeamID: f.home.ID, AwayTeamID: f.home.ID, Date: time.Now()}, apperr.IsValidation},
		{"missing date", services.CreateMatchInput{HomeTeamID: f.home.ID, AwayTeamID: f.away.ID}, apperr.IsValidation},
		{"bad id", services.CreateMatchInput{HomeTeamID: "nope", AwayTeamID: f.away.ID, Date: time.Now()}, apperr.IsValidation},
		{"unknown team", services.CreateMatchInput{HomeTeamID: f.home.ID, AwayTeamID: "00000000-0000-0000-0000-000000000001", Date: time.Now()}, apperr.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateMatch(ctx, tt.in)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestGetMatchErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetMatch(ctx, "not-a-uuid")
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.GetMatch(ctx, "00000000-0000-0000-0000-000000000001")
	assert.True(t, apperr.IsNotFound(err))

	err = f.svc.SuspendMatch(ctx, "00000000-0000-0000-0000-000000000001")
	assert.True(t, apperr.IsNotFound(err))
}

func TestListMatchesByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	matches, total, err := f.svc.ListMatches(ctx, services.MatchFilter{Status: "upcoming", Limit: 100})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	for _, m := range matches {
		assert.Equal(t, scoring.StatusScheduled, m.Status)
	}

	_, _, err = f.svc.ListMatches(ctx, services.MatchFilter{Status: "postponed"})
	assert.True(t, apperr.IsValidation(err))
}
