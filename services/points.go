package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"volleyball-live-system/apperr"
	"volleyball-live-system/logger"
	"volleyball-live-system/messaging"
	"volleyball-live-system/models"
	"volleyball-live-system/scoring"
)

// RecordPointInput is one scoring command. Undo reverts the latest matching
// point instead of adding one.
type RecordPointInput struct {
	SetNumber int    `json:"set_number"`
	PlayerID  string `json:"player_id"`
	PointType string `json:"point_type"`
	Undo      bool   `json:"undo"`
}

func (in RecordPointInput) validate() (scoring.PointType, error) {
	if in.SetNumber <= 0 {
		return "", apperr.Validation("set_number is required")
	}
	if in.PlayerID == "" {
		return "", apperr.Validation("player_id is required")
	}
	if err := parseID("player", in.PlayerID); err != nil {
		return "", err
	}
	if in.PointType == "" {
		return "", apperr.Validation("point_type is required")
	}
	pt, err := scoring.ParsePointType(in.PointType)
	if err != nil {
		return "", apperr.Validation("%s", err.Error())
	}
	return pt, nil
}

// RecordPointResult carries the set score and the player's set-level row
// after the command. Clamped is set when an undo hit a zero floor.
type RecordPointResult struct {
	SetNumber         int                       `json:"set_number"`
	HomeScore         int                       `json:"home_score"`
	AwayScore         int                       `json:"away_score"`
	PlayerPerformance *models.PlayerPerformance `json:"player_performance"`
	Undo              bool                      `json:"undo"`
	Clamped           bool                      `json:"clamped"`
	Warnings          []string                  `json:"warnings,omitempty"`
	// Event is the appended ledger entry, or the removed one on undo.
	Event *models.PointEvent `json:"event,omitempty"`
}

func (s *MatchService) RecordPoint(ctx context.Context, matchID string, in RecordPointInput) (*RecordPointResult, error) {
	pt, err := in.validate()
	if err != nil {
		return nil, err
	}

	var result *RecordPointResult
	err = s.withMatchLock(ctx, "record_point", matchID, func(tx *gorm.DB, m *models.Match) error {
		if m.Status != scoring.StatusLive {
			return apperr.InvalidState("match is not live (status %q)", m.Status)
		}

		var set models.Set
		err := tx.Where("match_id = ? AND set_number = ?", m.ID, in.SetNumber).First(&set).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("set %d not found", in.SetNumber)
		}
		if err != nil {
			return fmt.Errorf("load set: %w", err)
		}
		if !set.IsOpen() {
			return apperr.InvalidState("set %d is already finished", set.SetNumber)
		}

		var player models.Player
		err = tx.Where("id = ?", in.PlayerID).First(&player).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("player %s not found", in.PlayerID)
		}
		if err != nil {
			return fmt.Errorf("load player: %w", err)
		}
		side, ok := m.SideOf(player.TeamID)
		if !ok {
			return apperr.Validation("player %s does not play for either team in this match", player.ID)
		}

		perf, err := ensurePerformance(tx, m.ID, &set.ID, player.ID)
		if err != nil {
			return err
		}

		if in.Undo {
			result, err = undoPoint(tx, m, &set, &player, perf, pt)
		} else {
			result, err = s.applyPoint(tx, m, &set, &player, side, perf, pt)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Clamped {
		logger.WarnCtx(ctx, "Undo clamped at zero",
			zap.String("match_id", matchID),
			zap.Int("set_number", in.SetNumber),
			zap.String("player_id", in.PlayerID),
			zap.String("point_type", string(pt)),
			zap.Strings("warnings", result.Warnings))
	}

	kind := messaging.PointScored
	if in.Undo {
		kind = messaging.PointUndone
	}
	s.afterCommit(ctx, messaging.LiveEvent{
		Kind:       kind,
		MatchID:    matchID,
		SetNumber:  result.SetNumber,
		HomeScore:  result.HomeScore,
		AwayScore:  result.AwayScore,
		OccurredAt: s.clock(),
		Payload: map[string]interface{}{
			"player_id":  in.PlayerID,
			"point_type": pt,
			"points":     result.PlayerPerformance.Points,
		},
	})
	return result, nil
}

func (s *MatchService) applyPoint(tx *gorm.DB, m *models.Match, set *models.Set, player *models.Player,
	side scoring.Side, perf *models.PlayerPerformance, pt scoring.PointType) (*RecordPointResult, error) {
	counters := perf.Counters()
	counters.Apply(pt, 1)
	perf.SetCounters(counters)
	if err := savePerformance(tx, perf); err != nil {
		return nil, err
	}

	if side == scoring.Home {
		set.HomeScore++
	} else {
		set.AwayScore++
	}
	if err := saveSetScore(tx, set); err != nil {
		return nil, err
	}

	playerID, ptValue := player.ID, string(pt)
	ev := &models.PointEvent{
		MatchID:        m.ID,
		SetID:          set.ID,
		PlayerID:       &playerID,
		PointType:      &ptValue,
		TeamID:         player.TeamID,
		Timestamp:      s.clock(),
		HomeScoreAfter: set.HomeScore,
		AwayScoreAfter: set.AwayScore,
		Description:    pointDescription(pt, player.Name),
	}
	if err := appendPointEvent(tx, ev); err != nil {
		return nil, err
	}

	return &RecordPointResult{
		SetNumber:         set.SetNumber,
		HomeScore:         set.HomeScore,
		AwayScore:         set.AwayScore,
		PlayerPerformance: perf,
		Event:             ev,
	}, nil
}

func undoPoint(tx *gorm.DB, m *models.Match, set *models.Set, player *models.Player,
	perf *models.PlayerPerformance, pt scoring.PointType) (*RecordPointResult, error) {
	ev, err := lastPointEvent(tx, m.ID, set.ID, player.ID, pt)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, apperr.NotFound("nothing to undo for player %s (%s) in set %d", player.ID, pt, set.SetNumber)
	}

	result := &RecordPointResult{SetNumber: set.SetNumber, Undo: true}

	counters := perf.Counters()
	if counters.Apply(pt, -1) {
		result.Clamped = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s counter for player %s was already 0", pt.Label(), player.Name))
	}
	perf.SetCounters(counters)
	if err := savePerformance(tx, perf); err != nil {
		return nil, err
	}

	// The ledger entry knows which team was credited.
	side, ok := m.SideOf(ev.TeamID)
	if !ok {
		side, _ = m.SideOf(player.TeamID)
	}
	score := &set.HomeScore
	if side == scoring.Away {
		score = &set.AwayScore
	}
	if *score > 0 {
		*score--
	} else {
		result.Clamped = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s score in set %d was already 0", side, set.SetNumber))
	}
	if err := saveSetScore(tx, set); err != nil {
		return nil, err
	}

	if err := deletePointEvent(tx, ev.ID); err != nil {
		return nil, err
	}

	result.HomeScore = set.HomeScore
	result.AwayScore = set.AwayScore
	result.PlayerPerformance = perf
	result.Event = ev
	return result, nil
}

func saveSetScore(tx *gorm.DB, set *models.Set) error {
	err := tx.Model(set).Updates(map[string]interface{}{
		"home_score": set.HomeScore,
		"away_score": set.AwayScore,
	}).Error
	if err != nil {
		return fmt.Errorf("save set score: %w", err)
	}
	return nil
}
