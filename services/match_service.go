package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"volleyball-live-system/apperr"
	"volleyball-live-system/logger"
	"volleyball-live-system/messaging"
	"volleyball-live-system/models"
	"volleyball-live-system/scoring"
)

// MatchService runs the live match state machine: lifecycle, sets, points
// and timeouts. Every write holds the match row lock for its whole
// transaction.
type MatchService struct {
	DB *gorm.DB

	publisher messaging.Publisher
	notifier  ChangeNotifier
	retry     RetryPolicy
	now       func() time.Time
}

type MatchServiceOption func(*MatchService)

func WithPublisher(p messaging.Publisher) MatchServiceOption {
	return func(s *MatchService) { s.publisher = p }
}

func WithChangeNotifier(n ChangeNotifier) MatchServiceOption {
	return func(s *MatchService) { s.notifier = n }
}

func WithRetryPolicy(p RetryPolicy) MatchServiceOption {
	return func(s *MatchService) { s.retry = p }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) MatchServiceOption {
	return func(s *MatchService) { s.now = now }
}

func NewMatchService(db *gorm.DB, opts ...MatchServiceOption) *MatchService {
	s := &MatchService{
		DB:        db,
		publisher: messaging.NoopPublisher{},
		retry:     DefaultRetryPolicy,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MatchService) clock() time.Time {
	return s.now().UTC()
}

func durationSec(start *time.Time, end time.Time) *int64 {
	if start == nil {
		return nil
	}
	d := int64(end.Sub(*start).Seconds())
	return &d
}

// CreateMatchInput describes a fixture to schedule.
type CreateMatchInput struct {
	HomeTeamID      string    `json:"home_team_id"`
	AwayTeamID      string    `json:"away_team_id"`
	Date            time.Time `json:"date"`
	Location        string    `json:"location"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	TotalSpectators int       `json:"total_spectators"`
	MatchNotes      string    `json:"match_notes"`
}

func (in CreateMatchInput) validate() error {
	if in.HomeTeamID == "" || in.AwayTeamID == "" {
		return apperr.Validation("home_team_id and away_team_id are required")
	}
	if err := parseID("home team", in.HomeTeamID); err != nil {
		return err
	}
	if err := parseID("away team", in.AwayTeamID); err != nil {
		return err
	}
	if in.HomeTeamID == in.AwayTeamID {
		return apperr.Validation("a team cannot play against itself")
	}
	if in.Date.IsZero() {
		return apperr.Validation("date is required")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return apperr.Validation("latitude and longitude must be given together")
	}
	if in.TotalSpectators < 0 {
		return apperr.Validation("total_spectators cannot be negative")
	}
	return nil
}

func (s *MatchService) CreateMatch(ctx context.Context, in CreateMatchInput) (*models.Match, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Team{}).Where("id IN ?", []string{in.HomeTeamID, in.AwayTeamID}).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err, "failed to look up teams")
	}
	if count != 2 {
		return nil, apperr.NotFound("home or away team not found")
	}

	match := &models.Match{
		ID:              uuid.NewString(),
		HomeTeamID:      in.HomeTeamID,
		AwayTeamID:      in.AwayTeamID,
		Date:            in.Date.UTC(),
		Location:        in.Location,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		Status:          scoring.StatusScheduled,
		TotalSpectators: in.TotalSpectators,
		MatchNotes:      in.MatchNotes,
	}
	if err := db.Create(match).Error; err != nil {
		return nil, apperr.Internal(err, "failed to create match")
	}
	if s.notifier != nil {
		s.notifier.MarkDirty()
	}

	logger.InfoCtx(ctx, "Match scheduled", zap.String("match_id", match.ID))
	return s.loadMatch(db, match.ID)
}

func (s *MatchService) loadMatch(db *gorm.DB, id string) (*models.Match, error) {
	var m models.Match
	err := db.Preload("HomeTeam").Preload("AwayTeam").
		Preload("Sets", func(q *gorm.DB) *gorm.DB { return q.Order("set_number ASC") }).
		Where("id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("match %s not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load match %s", id)
	}
	return &m, nil
}

// MatchDetail is a match with its live tally and player totals.
type MatchDetail struct {
	*models.Match
	SetsWon      scoring.Tally `json:"sets_won"`
	CurrentSet   *models.Set   `json:"current_set,omitempty"`
	PlayerTotals []PlayerTotal `json:"player_totals"`
}

func (s *MatchService) GetMatch(ctx context.Context, id string) (*MatchDetail, error) {
	if err := parseID("match", id); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	m, err := s.loadMatch(db, id)
	if err != nil {
		return nil, err
	}

	totals, err := matchTotals(db, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load player totals")
	}

	detail := &MatchDetail{Match: m, PlayerTotals: totals}
	for i := range m.Sets {
		set := &m.Sets[i]
		if set.IsOpen() {
			detail.CurrentSet = set
			continue
		}
		detail.SetsWon.Add(set.HomeScore, set.AwayScore)
	}
	return detail, nil
}

// MatchFilter narrows ListMatches. Status accepts "upcoming" for scheduled.
type MatchFilter struct {
	Status string
	Limit  int
	Offset int
}

func (s *MatchService) ListMatches(ctx context.Context, f MatchFilter) ([]models.Match, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Match{})
	if f.Status != "" {
		status, ok := scoring.NormalizeStatus(f.Status)
		if !ok {
			return nil, 0, apperr.Validation("unknown status %q", f.Status)
		}
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err, "failed to count matches")
	}

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var matches []models.Match
	err := q.Preload("HomeTeam").Preload("AwayTeam").
		Order("date ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&matches).Error
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to list matches")
	}
	return matches, total, nil
}

func (s *MatchService) ListPointEvents(ctx context.Context, matchID string, setNumber int) ([]models.PointEvent, error) {
	if err := parseID("match", matchID); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Match{}).Where("id = ?", matchID).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err, "failed to look up match")
	}
	if count == 0 {
		return nil, apperr.NotFound("match %s not found", matchID)
	}

	events, err := listPointEvents(db, matchID, setNumber)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list point events")
	}
	return events, nil
}

// StartMatchResult is returned by StartMatch.
type StartMatchResult struct {
	StartTime time.Time      `json:"start_time"`
	MatchData StartMatchData `json:"match_data"`
}

type StartMatchData struct {
	CurrentSet         int                        `json:"current_set"`
	HomeScore          int                        `json:"home_score"`
	AwayScore          int                        `json:"away_score"`
	PlayerPerformances []models.PlayerPerformance `json:"player_performances"`
}

// StartMatch moves a scheduled match to live. Set 1 and the match-level
// performance rows of both rosters are created only if missing, so a
// retried or repeated start never duplicates them.
func (s *MatchService) StartMatch(ctx context.Context, matchID string) (*StartMatchResult, error) {
	var result *StartMatchResult

	err := s.withMatchLock(ctx, "start_match", matchID, func(tx *gorm.DB, m *models.Match) error {
		if !scoring.CanStart(m.Status) {
			return apperr.InvalidState("match cannot be started from status %q", m.Status)
		}
		now := s.clock()

		set, err := ensureFirstSet(tx, m.ID, now)
		if err != nil {
			return err
		}

		var players []models.Player
		if err := tx.Where("team_id IN ?", []string{m.HomeTeamID, m.AwayTeamID}).
			Order("team_id, jersey_number").
			Find(&players).Error; err != nil {
			return fmt.Errorf("load rosters: %w", err)
		}

		perfs := make([]models.PlayerPerformance, 0, len(players))
		for i := range players {
			perf, err := ensurePerformance(tx, m.ID, nil, players[i].ID)
			if err != nil {
				return err
			}
			perf.Player = &players[i]
			perfs = append(perfs, *perf)
		}

		if err := tx.Model(m).Updates(map[string]interface{}{
			"status":     scoring.StatusLive,
			"start_time": now,
		}).Error; err != nil {
			return fmt.Errorf("mark match live: %w", err)
		}

		result = &StartMatchResult{
			StartTime: now,
			MatchData: StartMatchData{
				CurrentSet:         set.SetNumber,
				HomeScore:          set.HomeScore,
				AwayScore:          set.AwayScore,
				PlayerPerformances: perfs,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Match started", zap.String("match_id", matchID))
	s.afterCommit(ctx, messaging.LiveEvent{
		Kind:       messaging.MatchStarted,
		MatchID:    matchID,
		SetNumber:  result.MatchData.CurrentSet,
		HomeScore:  result.MatchData.HomeScore,
		AwayScore:  result.MatchData.AwayScore,
		OccurredAt: result.StartTime,
	})
	return result, nil
}

func ensureFirstSet(tx *gorm.DB, matchID string, now time.Time) (*models.Set, error) {
	var set models.Set
	err := tx.Where(models.Set{MatchID: matchID, SetNumber: 1}).
		Attrs(models.Set{ID: uuid.NewString(), StartTime: &now}).
		FirstOrCreate(&set).Error
	if err != nil {
		return nil, fmt.Errorf("ensure first set: %w", err)
	}
	if set.StartTime == nil && set.EndTime == nil {
		set.StartTime = &now
		if err := tx.Model(&set).Update("start_time", now).Error; err != nil {
			return nil, fmt.Errorf("stamp first set: %w", err)
		}
	}
	return &set, nil
}

// EndMatchResult is returned by EndMatch.
type EndMatchResult struct {
	EndTime     time.Time `json:"end_time"`
	DurationSec int64     `json:"duration"`
}

func (s *MatchService) EndMatch(ctx context.Context, matchID string) (*EndMatchResult, error) {
	var result *EndMatchResult

	err := s.withMatchLock(ctx, "end_match", matchID, func(tx *gorm.DB, m *models.Match) error {
		res, err := s.finishMatch(tx, m, s.clock())
		result = res
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Match ended", zap.String("match_id", matchID), zap.Int64("duration_sec", result.DurationSec))
	s.afterCommit(ctx, messaging.LiveEvent{
		Kind:       messaging.MatchFinished,
		MatchID:    matchID,
		OccurredAt: result.EndTime,
		Payload:    map[string]interface{}{"duration": result.DurationSec},
	})
	return result, nil
}

// finishMatch is the only path into finished. It requires a live match
// with a start time and stamps end time and duration once.
func (s *MatchService) finishMatch(tx *gorm.DB, m *models.Match, now time.Time) (*EndMatchResult, error) {
	if m.StartTime == nil || !scoring.CanEnd(m.Status) {
		return nil, apperr.InvalidState("match cannot be ended from status %q", m.Status)
	}

	duration := *durationSec(m.StartTime, now)
	if err := tx.Model(m).Updates(map[string]interface{}{
		"status":       scoring.StatusFinished,
		"end_time":     now,
		"duration_sec": duration,
	}).Error; err != nil {
		return nil, fmt.Errorf("mark match finished: %w", err)
	}
	return &EndMatchResult{EndTime: now, DurationSec: duration}, nil
}

func (s *MatchService) SuspendMatch(ctx context.Context, matchID string) error {
	err := s.withMatchLock(ctx, "suspend_match", matchID, func(tx *gorm.DB, m *models.Match) error {
		if !scoring.CanSuspend(m.Status) {
			return apperr.InvalidState("match cannot be suspended from status %q", m.Status)
		}
		return tx.Model(m).Update("status", scoring.StatusSuspended).Error
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, messaging.LiveEvent{
		Kind:       messaging.MatchSuspended,
		MatchID:    matchID,
		OccurredAt: s.clock(),
	})
	return nil
}

// RescheduleMatch moves the match to newDate and marks it rescheduled.
func (s *MatchService) RescheduleMatch(ctx context.Context, matchID string, newDate time.Time) (time.Time, error) {
	if newDate.IsZero() {
		return time.Time{}, apperr.Validation("new_date is required")
	}
	newDate = newDate.UTC()

	err := s.withMatchLock(ctx, "reschedule_match", matchID, func(tx *gorm.DB, m *models.Match) error {
		if !scoring.CanReschedule(m.Status) {
			return apperr.InvalidState("match cannot be rescheduled from status %q", m.Status)
		}
		return tx.Model(m).Updates(map[string]interface{}{
			"status": scoring.StatusRescheduled,
			"date":   newDate,
		}).Error
	})
	if err != nil {
		return time.Time{}, err
	}

	s.afterCommit(ctx, messaging.LiveEvent{
		Kind:       messaging.MatchRescheduled,
		MatchID:    matchID,
		OccurredAt: s.clock(),
		Payload:    map[string]interface{}{"new_date": newDate},
	})
	return newDate, nil
}
