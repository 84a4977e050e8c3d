package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volleyball-live-system/apperr"
	"volleyball-live-system/services"
)

func TestRecordAndListWeather(t *testing.T) {
	f := newFixture(t)
	weather := services.NewWeatherService(f.svc)
	ctx := context.Background()

	at := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	_, err := weather.Record(ctx, f.match.ID, services.WeatherInput{
		Timestamp: at.Add(time.Hour), Temperature: 18.5, Condition: "Rain",
	})
	require.NoError(t, err)
	w, err := weather.Record(ctx, f.match.ID, services.WeatherInput{
		Timestamp: at, Temperature: 21, Condition: " Clear sky ", Source: "open-meteo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Clear sky", w.Condition)

	readings, err := weather.List(ctx, f.match.ID)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, "Clear sky", readings[0].Condition)
	assert.Equal(t, "open-meteo", readings[0].Source)
	assert.Equal(t, "manual", readings[1].Source)

	_, err = weather.Record(ctx, f.match.ID, services.WeatherInput{Temperature: 20})
	assert.True(t, apperr.IsValidation(err))

	_, err = weather.Record(ctx, "00000000-0000-0000-0000-000000000001", services.WeatherInput{Condition: "Fog"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestLiveMatchesWithCoordinates(t *testing.T) {
	f := newFixture(t)
	weather := services.NewWeatherService(f.svc)
	ctx := context.Background()

	contains := func() bool {
		matches, err := weather.LiveMatchesWithCoordinates(ctx)
		require.NoError(t, err)
		for _, m := range matches {
			if m.ID == f.match.ID {
				return true
			}
		}
		return false
	}

	assert.False(t, contains(), "scheduled matches are not polled")
	f.start(t)
	assert.True(t, contains())
}
