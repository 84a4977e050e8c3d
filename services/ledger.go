package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"volleyball-live-system/models"
	"volleyball-live-system/scoring"
)

// newEventID returns a ULID for t. IDs minted in the same millisecond are
// monotonic, which makes (timestamp, id) a strict order over the ledger.
func newEventID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

func pointDescription(pt scoring.PointType, playerName string) string {
	return fmt.Sprintf("Point by %s from player %s", pt.Label(), playerName)
}

func setEndDescription(setNumber int) string {
	return fmt.Sprintf("End of set %d", setNumber)
}

func appendPointEvent(tx *gorm.DB, ev *models.PointEvent) error {
	if ev.ID == "" {
		ev.ID = newEventID(ev.Timestamp)
	}
	if err := tx.Create(ev).Error; err != nil {
		return fmt.Errorf("append point event: %w", err)
	}
	return nil
}

// lastPointEvent finds the most recent rally entry for the undo scope.
// It returns nil when the ledger has nothing to undo.
func lastPointEvent(tx *gorm.DB, matchID, setID, playerID string, pt scoring.PointType) (*models.PointEvent, error) {
	var ev models.PointEvent
	err := tx.Where("match_id = ? AND set_id = ? AND player_id = ? AND point_type = ?",
		matchID, setID, playerID, string(pt)).
		Order("timestamp DESC").
		Order("id DESC").
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find last point event: %w", err)
	}
	return &ev, nil
}

func deletePointEvent(tx *gorm.DB, id string) error {
	res := tx.Where("id = ?", id).Delete(&models.PointEvent{})
	if res.Error != nil {
		return fmt.Errorf("delete point event: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("delete point event %s: %d rows affected", id, res.RowsAffected)
	}
	return nil
}

func listPointEvents(db *gorm.DB, matchID string, setNumber int) ([]models.PointEvent, error) {
	q := db.Model(&models.PointEvent{}).Where("point_events.match_id = ?", matchID)
	if setNumber > 0 {
		q = q.Joins("JOIN match_sets ON match_sets.id = point_events.set_id").
			Where("match_sets.set_number = ?", setNumber)
	}

	var events []models.PointEvent
	if err := q.Order("point_events.timestamp ASC").Order("point_events.id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list point events: %w", err)
	}
	return events, nil
}
