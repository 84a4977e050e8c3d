package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"volleyball-live-system/apperr"
	"volleyball-live-system/logger"
	"volleyball-live-system/messaging"
	"volleyball-live-system/models"
	"volleyball-live-system/scoring"
)

// UpdateMatchInput edits the descriptive fields of a match. Nil fields are
// left alone. Status only moves through the lifecycle operations.
type UpdateMatchInput struct {
	Date            *time.Time `json:"date"`
	Location        *string    `json:"location"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	TotalSpectators *int       `json:"total_spectators"`
	MatchNotes      *string    `json:"match_notes"`
}

func (in UpdateMatchInput) updates(status scoring.Status) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if in.Date != nil {
		if in.Date.IsZero() {
			return nil, apperr.Validation("date cannot be empty")
		}
		// A started match keeps its date; moving it is a reschedule.
		if status != scoring.StatusScheduled {
			return nil, apperr.InvalidState("date can only be edited while the match is scheduled (status %q)", status)
		}
		updates["date"] = in.Date.UTC()
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, apperr.Validation("latitude and longitude must be given together")
	}
	if in.Latitude != nil {
		updates["latitude"] = *in.Latitude
		updates["longitude"] = *in.Longitude
	}
	if in.TotalSpectators != nil {
		if *in.TotalSpectators < 0 {
			return nil, apperr.Validation("total_spectators cannot be negative")
		}
		updates["total_spectators"] = *in.TotalSpectators
	}
	if in.MatchNotes != nil {
		updates["match_notes"] = *in.MatchNotes
	}
	return updates, nil
}

// UpdateMatch edits a match that has not finished yet.
func (s *MatchService) UpdateMatch(ctx context.Context, matchID string, in UpdateMatchInput) (*models.Match, error) {
	var changed []string
	err := s.withMatchLock(ctx, "update_match", matchID, func(tx *gorm.DB, m *models.Match) error {
		changed = nil
		if m.Status == scoring.StatusFinished {
			return apperr.InvalidState("finished matches cannot be edited")
		}
		updates, err := in.updates(m.Status)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(m).Updates(updates).Error; err != nil {
			return fmt.Errorf("update match: %w", err)
		}
		for k := range updates {
			changed = append(changed, k)
		}
		sort.Strings(changed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.afterCommit(ctx, messaging.LiveEvent{
			Kind:       messaging.MatchUpdated,
			MatchID:    matchID,
			OccurredAt: s.clock(),
			Payload:    map[string]interface{}{"fields": changed},
		})
	}
	return s.loadMatch(s.DB.WithContext(ctx), matchID)
}

// DeleteMatch removes a match together with everything it owns: sets,
// ledger entries, player performances, weather readings and archived
// reports. Live matches must be suspended or ended first.
func (s *MatchService) DeleteMatch(ctx context.Context, matchID string) error {
	err := s.withMatchLock(ctx, "delete_match", matchID, func(tx *gorm.DB, m *models.Match) error {
		if m.Status == scoring.StatusLive {
			return apperr.InvalidState("a live match cannot be deleted, suspend or end it first")
		}

		owned := []struct {
			name  string
			model interface{}
		}{
			{"point events", &models.PointEvent{}},
			{"player performances", &models.PlayerPerformance{}},
			{"sets", &models.Set{}},
			{"weather", &models.Weather{}},
			{"reports", &models.MatchReport{}},
		}
		for _, o := range owned {
			if err := tx.Unscoped().Where("match_id = ?", m.ID).Delete(o.model).Error; err != nil {
				return fmt.Errorf("delete %s: %w", o.name, err)
			}
		}
		if err := tx.Unscoped().Delete(m).Error; err != nil {
			return fmt.Errorf("delete match: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Match deleted", zap.String("match_id", matchID))
	s.afterCommit(ctx, messaging.LiveEvent{
		Kind:       messaging.MatchDeleted,
		MatchID:    matchID,
		OccurredAt: s.clock(),
	})
	return nil
}

// ListPerformances returns the raw performance rows of a match with their
// players. setNumber 0 returns every row, the match-level markers
// included; a positive setNumber returns the rows of that set.
func (s *MatchService) ListPerformances(ctx context.Context, matchID string, setNumber int) ([]models.PlayerPerformance, error) {
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

	q := db.Model(&models.PlayerPerformance{}).
		Preload("Player").
		Where("player_performances.match_id = ?", matchID)
	if setNumber > 0 {
		q = q.Joins("JOIN match_sets ON match_sets.id = player_performances.set_id").
			Where("match_sets.set_number = ?", setNumber)
	}

	var rows []models.PlayerPerformance
	err := q.Order("player_performances.set_id NULLS FIRST").
		Order("player_performances.points DESC").
		Order("player_performances.player_id").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal(err, "failed to list performances")
	}
	return rows, nil
}
