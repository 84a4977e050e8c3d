package workers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"volleyball-live-system/config"
	"volleyball-live-system/logger"
	"volleyball-live-system/models"
	"volleyball-live-system/services"
	"volleyball-live-system/utils"
)

// WeatherRecorder is the part of the weather service the poller needs.
type WeatherRecorder interface {
	LiveMatchesWithCoordinates(ctx context.Context) ([]models.Match, error)
	Record(ctx context.Context, matchID string, in services.WeatherInput) (*models.Weather, error)
}

// WeatherClient reads current conditions from Open-Meteo.
type WeatherClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

type CurrentWeather struct {
	Time        time.Time
	Temperature float64
	WeatherCode int
}

func NewWeatherClient(baseURL string) *WeatherClient {
	return &WeatherClient{
		BaseURL:    baseURL,
		HTTPClient: utils.NewHTTPClient(15 * time.Second),
	}
}

func (c *WeatherClient) Current(ctx context.Context, lat, lon float64) (*CurrentWeather, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weather URL %q: %w", c.BaseURL, err)
	}
	u := base.JoinPath("/v1/forecast")
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", "temperature_2m,weather_code")
	q.Set("timezone", "UTC")
	u.RawQuery = q.Encode()

	var body struct {
		Current struct {
			Time          string  `json:"time"`
			Temperature2M float64 `json:"temperature_2m"`
			WeatherCode   int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := utils.GetJSON(ctx, c.HTTPClient, "weather service", u.String(), nil, &body); err != nil {
		return nil, err
	}

	// Open-Meteo sends ISO8601 without seconds or zone ("2025-06-01T18:15").
	ts, err := time.Parse("2006-01-02T15:04", body.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}
	return &CurrentWeather{
		Time:        ts,
		Temperature: body.Current.Temperature2M,
		WeatherCode: body.Current.WeatherCode,
	}, nil
}

// ConditionLabel maps a WMO weather interpretation code to a short label.
func ConditionLabel(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code >= 1 && code <= 3:
		return "Partly cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code == 85 || code == 86:
		return "Snow showers"
	case code >= 95 && code <= 99:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}

// WeatherPoller appends a weather reading to every live match with
// coordinates on each tick.
type WeatherPoller struct {
	recorder WeatherRecorder
	client   *WeatherClient
	interval time.Duration
}

func NewWeatherPoller(recorder WeatherRecorder, cfg config.WeatherConfig) *WeatherPoller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &WeatherPoller{
		recorder: recorder,
		client:   NewWeatherClient(cfg.BaseURL),
		interval: interval,
	}
}

func (p *WeatherPoller) Start(ctx context.Context) {
	logger.Info("[WEATHER] starting poller", zap.Duration("interval", p.interval))
	go p.run(ctx)
}

func (p *WeatherPoller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("[WEATHER] poller stopped")
			return
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				logger.Warn("[WEATHER] poll failed", zap.Error(err))
			}
		}
	}
}

// PollOnce records one reading per live match and returns how many were
// stored. A failing match does not stop the others.
func (p *WeatherPoller) PollOnce(ctx context.Context) (int, error) {
	matches, err := p.recorder.LiveMatchesWithCoordinates(ctx)
	if err != nil {
		return 0, err
	}

	recorded := 0
	for _, m := range matches {
		if m.Latitude == nil || m.Longitude == nil {
			continue
		}
		current, err := p.client.Current(ctx, *m.Latitude, *m.Longitude)
		if err != nil {
			logger.Warn("[WEATHER] fetch failed", zap.String("match_id", m.ID), zap.Error(err))
			continue
		}
		_, err = p.recorder.Record(ctx, m.ID, services.WeatherInput{
			Timestamp:   current.Time,
			Temperature: current.Temperature,
			Condition:   ConditionLabel(current.WeatherCode),
			Source:      "open-meteo",
		})
		if err != nil {
			logger.Warn("[WEATHER] record failed", zap.String("match_id", m.ID), zap.Error(err))
			continue
		}
		recorded++
	}

	if recorded > 0 {
		logger.Debug("[WEATHER] readings recorded", zap.Int("count", recorded))
	}
	return recorded, nil
}
