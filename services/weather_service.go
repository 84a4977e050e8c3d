package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"volleyball-live-system/apperr"
	"volleyball-live-system/models"
	"volleyball-live-system/scoring"
)

// WeatherService attaches weather readings to matches.
type WeatherService struct {
	Matches *MatchService
}

func NewWeatherService(matches *MatchService) *WeatherService {
	return &WeatherService{Matches: matches}
}

type WeatherInput struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Condition   string    `json:"condition"`
	Source      string    `json:"source"`
}

func (s *WeatherService) Record(ctx context.Context, matchID string, in WeatherInput) (*models.Weather, error) {
	if err := parseID("match", matchID); err != nil {
		return nil, err
	}
	in.Condition = strings.TrimSpace(in.Condition)
	if in.Condition == "" {
		return nil, apperr.Validation("condition is required")
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = s.Matches.clock()
	}
	if in.Source == "" {
		in.Source = "manual"
	}

	db := s.Matches.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Match{}).Where("id = ?", matchID).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err, "failed to look up match")
	}
	if count == 0 {
		return nil, apperr.NotFound("match %s not found", matchID)
	}

	w := &models.Weather{
		ID:          uuid.NewString(),
		MatchID:     matchID,
		Timestamp:   in.Timestamp.UTC(),
		Temperature: in.Temperature,
		Condition:   in.Condition,
		Source:      in.Source,
	}
	if err := db.Create(w).Error; err != nil {
		return nil, apperr.Internal(err, "failed to record weather")
	}
	return w, nil
}

func (s *WeatherService) List(ctx context.Context, matchID string) ([]models.Weather, error) {
	if err := parseID("match", matchID); err != nil {
		return nil, err
	}
	var readings []models.Weather
	if err := s.Matches.DB.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("timestamp ASC").
		Find(&readings).Error; err != nil {
		return nil, apperr.Internal(err, "failed to list weather")
	}
	return readings, nil
}

// LiveMatchesWithCoordinates lists the matches the weather poller watches.
func (s *WeatherService) LiveMatchesWithCoordinates(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	err := s.Matches.DB.WithContext(ctx).
		Where("status = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", scoring.StatusLive).
		Find(&matches).Error
	if err != nil {
		return nil, apperr.Internal(err, "failed to list live matches")
	}
	return matches, nil
}
