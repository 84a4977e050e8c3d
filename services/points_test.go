package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volleyball-live-system/apperr"
	"volleyball-live-system/models"
	"volleyball-live-system/services"
)

func TestPointsAreSumOfScoringCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)

	home, away := f.homePlayers[0], f.awayPlayers[0]
	sequence := []struct {
		player *models.Player
		pt     string
	}{
		{home, "SPK"},
		{home, "blk"},
		{away, "ACE"},
		{home, "ERR"},
		{home, "ace"},
		{away, "SPK"},
	}
	var last *services.RecordPointResult
	for _, step := range sequence {
		var err error
		last, err = f.svc.RecordPoint(ctx, f.match.ID, services.RecordPointInput{
			SetNumber: 1, PlayerID: step.player.ID, PointType: step.pt,
		})
		require.NoError(t, err, "%s by %s", step.pt, step.player.Name)
	}
	assert.Equal(t, 4, last.HomeScore, "an error still credits the player's team")
	assert.Equal(t, 2, last.AwayScore)

	var perf models.PlayerPerformance
	require.NoError(t, f.db.Where("player_id = ? AND set_id IS NOT NULL", home.ID).First(&perf).Error)
	assert.Equal(t, 1, perf.SpikePoints)
	assert.Equal(t, 1, perf.BlockPoints)
	assert.Equal(t, 1, perf.Aces)
	assert.Equal(t, 1, perf.Errors)
	assert.Equal(t, 3, perf.Points)

	detail, err := f.svc.GetMatch(ctx, f.match.ID)
	require.NoError(t, err)
	require.Len(t, detail.PlayerTotals, 2, "only players with set-level rows are totalled")
	assert.Equal(t, home.ID, detail.PlayerTotals[0].PlayerID)
	assert.Equal(t, 3, detail.PlayerTotals[0].Points)
	assert.Equal(t, 2, detail.PlayerTotals[1].Points)

	events, err := f.svc.ListPointEvents(ctx, f.match.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, len(sequence))
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}
	assert.Equal(t, 4, events[len(events)-1].HomeScoreAfter)
	assert.Equal(t, 2, events[len(events)-1].AwayScoreAfter)
	assert.Contains(t, events[3].Description, "Point by Error from player")
}

func TestUndoWithoutMatchingEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)

	p := f.homePlayers[0]
	_, err := f.svc.RecordPoint(ctx, f.match.ID, services.RecordPointInput{
		SetNumber: 1, PlayerID: p.ID, PointType: "BLK",
	})
	require.NoError(t, err)

	// A block exists but no spike, so a spike cannot be undone.
	_, err = f.svc.RecordPoint(ctx, f.match.ID, services.RecordPointInput{
		SetNumber: 1, PlayerID: p.ID, PointType: "SPK", Undo: true,
	})
	assert.True(t, apperr.IsNotFound(err))

	detail, err := f.svc.GetMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.CurrentSet.HomeScore)
}

func TestUndoClampsAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)

	p := f.homePlayers[1]
	in := services.RecordPointInput{SetNumber: 1, PlayerID: p.ID, PointType: "SPK"}
	_, err := f.svc.RecordPoint(ctx, f.match.ID, in)
	require.NoError(t, err)

	// Counter edited out of band; the ledger still holds the spike.
	require.NoError(t, f.db.Model(&models.PlayerPerformance{}).
		Where("player_id = ? AND set_id IS NOT NULL", p.ID).
		Updates(map[string]interface{}{"spike_points": 0, "points": 0}).Error)

	in.Undo = true
	res, err := f.svc.RecordPoint(ctx, f.match.ID, in)
	require.NoError(t, err)
	assert.True(t, res.Clamped)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Spike counter")
	assert.Equal(t, 0, res.PlayerPerformance.SpikePoints)
	assert.Equal(t, 0, res.HomeScore)
	assert.EqualValues(t, 0, f.count(t, &models.PointEvent{}, "match_id = ?", f.match.ID))
}

func TestRecordPointRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)

	stranger, err := f.roster.CreateTeam(ctx, "Stranger "+f.home.ID[:8])
	require.NoError(t, err)
	outsider, err := f.roster.CreatePlayer(ctx, services.CreatePlayerInput{
		TeamID: stranger.ID, Name: "Outsider", JerseyNumber: 7, Position: "LI",
	})
	require.NoError(t, err)

	valid := f.homePlayers[0].ID
	tests := []struct {
		name  string
		in    services.RecordPointInput
		check func(error) bool
	}{
		{"missing set", services.RecordPointInput{PlayerID: valid, PointType: "SPK"}, apperr.IsValidation},
		{"missing player", services.RecordPointInput{SetNumber: 1, PointType: "SPK"}, apperr.IsValidation},
		{"malformed player", services.RecordPointInput{SetNumber: 1, PlayerID: "p-1", PointType: "SPK"}, apperr.IsValidation},
		{"unknown point type", services.RecordPointInput{SetNumber: 1, PlayerID: valid, PointType: "DIG"}, apperr.IsValidation},
		{"unknown set", services.RecordPointInput{SetNumber: 3, PlayerID: valid, PointType: "SPK"}, apperr.IsNotFound},
		{"unknown player", services.RecordPointInput{SetNumber: 1, PlayerID: "00000000-0000-0000-0000-000000000009", PointType: "SPK"}, apperr.IsNotFound},
		{"player of another team", services.RecordPointInput{SetNumber: 1, PlayerID: outsider.ID, PointType: "SPK"}, apperr.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordPoint(ctx, f.match.ID, tt.in)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	assert.EqualValues(t, 0, f.count(t, &models.PointEvent{}, "match_id = ?", f.match.ID))
}

func TestRecordPointOnFinishedSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)
	f.playSet(t, 1, 25, 21)

	_, err := f.svc.RecordPoint(ctx, f.match.ID, services.RecordPointInput{
		SetNumber: 1, PlayerID: f.homePlayers[0].ID, PointType: "SPK",
	})
	assert.True(t, apperr.IsInvalidState(err))
}

func TestConcurrentPointsOnOneMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)

	const n = 20
	p := f.homePlayers[0]
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordPoint(ctx, f.match.ID, services.RecordPointInput{
				SetNumber: 1, PlayerID: p.ID, PointType: "SPK",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	detail, err := f.svc.GetMatch(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, n, detail.CurrentSet.HomeScore)
	require.Len(t, detail.PlayerTotals, 1)
	assert.Equal(t, n, detail.PlayerTotals[0].SpikePoints)
	assert.EqualValues(t, n, f.count(t, &models.PointEvent{}, "match_id = ?", f.match.ID))
	assert.EqualValues(t, 1, f.count(t, &models.PlayerPerformance{}, "player_id = ? AND set_id IS NOT NULL", p.ID))

	events, err := f.svc.ListPointEvents(ctx, f.match.ID, 1)
	require.NoError(t, err)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.HomeScoreAfter, "ledger order follows the score")
	}
}

func TestUndoRemovesLatestMatchingEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t)

	p := f.homePlayers[0]
	var recorded []*models.PointEvent
	for _, pt := range []string{"SPK", "SPK", "BLK"} {
		res, err := f.svc.RecordPoint(ctx, f.match.ID, services.RecordPointInput{
			SetNumber: 1, PlayerID: p.ID, PointType: pt,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Event)
		recorded = append(recorded, res.Event)
	}
	firstSpike, secondSpike, block := recorded[0], recorded[1], recorded[2]
	assert.EqualValues(t, 3, f.count(t, &models.PointEvent{}, "match_id = ?", f.match.ID))

	res, err := f.svc.RecordPoint(ctx, f.match.ID, services.RecordPointInput{
		SetNumber: 1, PlayerID: p.ID, PointType: "SPK", Undo: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Event)
	assert.Equal(t, secondSpike.ID, res.Event.ID, "the later spike is the one removed")
	assert.False(t, res.Clamped)
	assert.Equal(t, 2, res.HomeScore)
	assert.Equal(t, 1, res.PlayerPerformance.SpikePoints)
	assert.Equal(t, 1, res.PlayerPerformance.BlockPoints)

	assert.EqualValues(t, 2, f.count(t, &models.PointEvent{}, "match_id = ?", f.match.ID))
	assert.EqualValues(t, 0, f.count(t, &models.PointEvent{}, "id = ?", secondSpike.ID))

	events, err := f.svc.ListPointEvents(ctx, f.match.ID, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, firstSpike.ID, events[0].ID)
	assert.Equal(t, 1, events[0].HomeScoreAfter, "earlier entries are never rewritten")
	assert.Equal(t, block.ID, events[1].ID)
	assert.Equal(t, 3, events[1].HomeScoreAfter)
}
