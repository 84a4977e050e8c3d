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

func latestSet(tx *gorm.DB, matchID string) (*models.Set, error) {
	var set models.Set
	err := tx.Where("match_id = ?", matchID).Order("set_number DESC").First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest set: %w", err)
	}
	return &set, nil
}

// openSet returns the highest numbered set without an end time, or nil.
func openSet(tx *gorm.DB, matchID string) (*models.Set, error) {
	var set models.Set
	err := tx.Where("match_id = ? AND end_time IS NULL", matchID).Order("set_number DESC").First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load open set: %w", err)
	}
	return &set, nil
}

func setsWon(tx *gorm.DB, matchID string) (scoring.Tally, error) {
	var closed []models.Set
	var tally scoring.Tally
	if err := tx.Where("match_id = ? AND end_time IS NOT NULL", matchID).Find(&closed).Error; err != nil {
		return tally, fmt.Errorf("load closed sets: %w", err)
	}
	for _, set := range closed {
		tally.Add(set.HomeScore, set.AwayScore)
	}
	return tally, nil
}

// StartSetResult is returned by StartSet.
type StartSetResult struct {
	SetNumber int       `json:"set_number"`
	StartTime time.Time `json:"start_time"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
}

func (s *MatchService) StartSet(ctx context.Context, matchID string) (*StartSetResult, error) {
	var result *StartSetResult

	err := s.withMatchLock(ctx, "start_set", matchID, func(tx *gorm.DB, m *models.Match) error {
		if m.Status != scoring.StatusLive {
			return apperr.InvalidState("match is not live (status %q)", m.Status)
		}

		prev, err := latestSet(tx, m.ID)
		if err != nil {
			return err
		}
		next := 1
		if prev != nil {
			if prev.IsOpen() {
				return apperr.InvalidState("previous set not finished").
					WithDetails(map[string]interface{}{"open_set": prev.SetNumber})
			}
			next = prev.SetNumber + 1
		}
		if next > scoring.MaxSets {
			return apperr.InvalidState("a match has at most %d sets", scoring.MaxSets)
		}

		now := s.clock()
		set := models.Set{
			ID:        uuid.NewString(),
			MatchID:   m.ID,
			SetNumber: next,
			StartTime: &now,
		}
		if err := tx.Create(&set).Error; err != nil {
			return fmt.Errorf("create set %d: %w", next, err)
		}

		result = &StartSetResult{SetNumber: next, StartTime: now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, messaging.LiveEvent{
		Kind:       messaging.SetStarted,
		MatchID:    matchID,
		SetNumber:  result.SetNumber,
		OccurredAt: result.StartTime,
	})
	return result, nil
}

// closeSet validates and closes the open set, writes the closing ledger
// entry and reports the new sets-won tally. It never touches the match
// status.
func (s *MatchService) closeSet(tx *gorm.DB, m *models.Match, now time.Time) (*SetCompleted, error) {
	set, err := openSet(tx, m.ID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, apperr.NotFound("no active set")
	}

	if v := scoring.CheckSetCompletion(set.SetNumber, set.HomeScore, set.AwayScore); v != nil {
		return nil, apperr.InvalidState("%s", v.Error()).WithDetails(map[string]interface{}{
			"set_number":       v.SetNumber,
			"current_score":    fmt.Sprintf("%d-%d", v.HomeScore, v.AwayScore),
			"required_minimum": v.RequiredMinimum,
			"required_margin":  v.RequiredMargin,
			"failed":           v.Failed,
		})
	}

	winner, _ := scoring.SetWinner(set.HomeScore, set.AwayScore)
	duration := durationSec(set.StartTime, now)

	updates := map[string]interface{}{"end_time": now}
	if duration != nil {
		updates["duration_sec"] = *duration
	}
	if err := tx.Model(set).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("close set %d: %w", set.SetNumber, err)
	}

	if err := appendPointEvent(tx, &models.PointEvent{
		MatchID:        m.ID,
		SetID:          set.ID,
		TeamID:         m.TeamID(winner),
		Timestamp:      now,
		HomeScoreAfter: set.HomeScore,
		AwayScoreAfter: set.AwayScore,
		Description:    setEndDescription(set.SetNumber),
	}); err != nil {
		return nil, err
	}

	tally, err := setsWon(tx, m.ID)
	if err != nil {
		return nil, err
	}

	return &SetCompleted{
		MatchID:      m.ID,
		SetNumber:    set.SetNumber,
		HomeScore:    set.HomeScore,
		AwayScore:    set.AwayScore,
		DurationSec:  duration,
		Winner:       winner,
		WinnerTeamID: m.TeamID(winner),
		SetsWon:      tally,
	}, nil
}

// EndSetResult is returned by EndSet.
type EndSetResult struct {
	SetNumber     int                `json:"set_number"`
	FinalScore    string             `json:"final_score"`
	Winner        scoring.Side       `json:"winner,omitempty"`
	SetData       EndSetData         `json:"set_data"`
	MatchStatus   EndSetMatchStatus  `json:"match_status"`
	MatchFinished bool               `json:"match_finished"`
	MatchData     *FinishedMatchData `json:"match_data,omitempty"`
}

type EndSetData struct {
	Number      int          `json:"number"`
	DurationSec *int64       `json:"duration"`
	FinalScore  string       `json:"final_score"`
	Winner      scoring.Side `json:"winner"`
}

type EndSetMatchStatus struct {
	SetsWon scoring.Tally `json:"sets_won"`
}

type FinishedMatchData struct {
	DurationSec  int64        `json:"duration"`
	Winner       scoring.Side `json:"winner"`
	WinnerTeamID string       `json:"winner_team_id"`
	FinalScore   string       `json:"final_score"`
}

// EndSet closes the open set and, when that set decides the match, ends
// the match in the same transaction.
func (s *MatchService) EndSet(ctx context.Context, matchID string) (*EndSetResult, error) {
	var (
		completed *SetCompleted
		finished  *EndMatchResult
		now       time.Time
	)

	err := s.withMatchLock(ctx, "end_set", matchID, func(tx *gorm.DB, m *models.Match) error {
		completed, finished = nil, nil
		if m.Status != scoring.StatusLive {
			return apperr.InvalidState("match is not live (status %q)", m.Status)
		}
		now = s.clock()

		var err error
		completed, err = s.closeSet(tx, m, now)
		if err != nil {
			return err
		}
		if _, decided := completed.MatchDecided(); decided {
			finished, err = s.finishMatch(tx, m, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	finalScore := fmt.Sprintf("%d-%d", completed.HomeScore, completed.AwayScore)
	result := &EndSetResult{
		SetNumber:  completed.SetNumber,
		FinalScore: finalScore,
		SetData: EndSetData{
			Number:      completed.SetNumber,
			DurationSec: completed.DurationSec,
			FinalScore:  finalScore,
			Winner:      completed.Winner,
		},
		MatchStatus: EndSetMatchStatus{SetsWon: completed.SetsWon},
	}

	events := []messaging.LiveEvent{{
		Kind:       messaging.SetCompleted,
		MatchID:    matchID,
		SetNumber:  completed.SetNumber,
		HomeScore:  completed.HomeScore,
		AwayScore:  completed.AwayScore,
		OccurredAt: now,
		Payload: map[string]interface{}{
			"winner":   completed.Winner,
			"sets_won": completed.SetsWon,
		},
	}}

	if finished != nil {
		winner, _ := completed.MatchDecided()
		result.MatchFinished = true
		result.Winner = winner
		result.MatchData = &FinishedMatchData{
			DurationSec:  finished.DurationSec,
			Winner:       winner,
			WinnerTeamID: completed.WinnerTeamID,
			FinalScore:   completed.SetsWon.String(),
		}
		events = append(events, messaging.LiveEvent{
			Kind:       messaging.MatchFinished,
			MatchID:    matchID,
			OccurredAt: now,
			Payload: map[string]interface{}{
				"winner":         winner,
				"winner_team_id": completed.WinnerTeamID,
				"final_score":    result.MatchData.FinalScore,
				"duration":       finished.DurationSec,
			},
		})
		logger.InfoCtx(ctx, "Match decided",
			zap.String("match_id", matchID),
			zap.String("winner", string(winner)),
			zap.String("sets", completed.SetsWon.String()))
	}

	s.afterCommit(ctx, events...)
	return result, nil
}

// TimeoutResult is returned by RecordTimeout.
type TimeoutResult struct {
	Team         scoring.Side `json:"team"`
	SetNumber    int          `json:"set_number"`
	TeamTimeouts int          `json:"team_timeouts"`
	Remaining    int          `json:"remaining"`
}

const TimeoutsPerSet = 2

func (s *MatchService) RecordTimeout(ctx context.Context, matchID string, team string) (*TimeoutResult, error) {
	side, err := scoring.ParseSide(team)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	var result *TimeoutResult
	err = s.withMatchLock(ctx, "record_timeout", matchID, func(tx *gorm.DB, m *models.Match) error {
		set, err := openSet(tx, m.ID)
		if err != nil {
			return err
		}
		if set == nil {
			return apperr.NotFound("no active set")
		}

		counter := set.Timeouts(side)
		if *counter >= TimeoutsPerSet {
			return apperr.LimitExceeded("%s team has used all %d timeouts in set %d", side, TimeoutsPerSet, set.SetNumber)
		}
		*counter++

		column := string(side) + "_timeouts"
		if err := tx.Model(set).Update(column, *counter).Error; err != nil {
			return fmt.Errorf("record set timeout: %w", err)
		}
		if err := tx.Model(m).Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return fmt.Errorf("record match timeout: %w", err)
		}

		result = &TimeoutResult{
			Team:         side,
			SetNumber:    set.SetNumber,
			TeamTimeouts: *counter,
			Remaining:    TimeoutsPerSet - *counter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, messaging.LiveEvent{
		Kind:       messaging.TimeoutRecorded,
		MatchID:    matchID,
		SetNumber:  result.SetNumber,
		OccurredAt: s.clock(),
		Payload:    map[string]interface{}{"team": side, "team_timeouts": result.TeamTimeouts},
	})
	return result, nil
}
