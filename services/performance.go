package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"volleyball-live-system/models"
)

// ensurePerformance returns the performance row of a player at the given
// granularity, creating a zeroed one if absent. A nil setID selects the
// match-level row.
func ensurePerformance(tx *gorm.DB, matchID string, setID *string, playerID string) (*models.PlayerPerformance, error) {
	var perf models.PlayerPerformance
	q := tx.Where("match_id = ? AND player_id = ?", matchID, playerID)
	if setID == nil {
		q = q.Where("set_id IS NULL")
	} else {
		q = q.Where("set_id = ?", *setID)
	}

	err := q.First(&perf).Error
	if err == nil {
		return &perf, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load performance: %w", err)
	}

	perf = models.PlayerPerformance{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		MatchID:  matchID,
		SetID:    setID,
	}
	if err := tx.Create(&perf).Error; err != nil {
		return nil, fmt.Errorf("create performance: %w", err)
	}
	return &perf, nil
}

func savePerformance(tx *gorm.DB, perf *models.PlayerPerformance) error {
	err := tx.Model(perf).Updates(map[string]interface{}{
		"spike_points": perf.SpikePoints,
		"block_points": perf.BlockPoints,
		"aces":         perf.Aces,
		"errors":       perf.Errors,
		"points":       perf.Points,
	}).Error
	if err != nil {
		return fmt.Errorf("save performance: %w", err)
	}
	return nil
}

// PlayerTotal is a player's match total summed over set-level rows.
type PlayerTotal struct {
	PlayerID    string `json:"player_id"`
	Name        string `json:"name"`
	TeamID      string `json:"team_id"`
	SpikePoints int    `json:"spike_points"`
	BlockPoints int    `json:"block_points"`
	Aces        int    `json:"aces"`
	Errors      int    `json:"errors"`
	Points      int    `json:"points"`
}

// matchTotals never reads the match-level rows, so nothing is counted twice.
func matchTotals(db *gorm.DB, matchID string) ([]PlayerTotal, error) {
	var totals []PlayerTotal
	err := db.Table("player_performances AS pp").
		Select(`pp.player_id, p.name, p.team_id,
			SUM(pp.spike_points) AS spike_points,
			SUM(pp.block_points) AS block_points,
			SUM(pp.aces) AS aces,
			SUM(pp.errors) AS errors,
			SUM(pp.points) AS points`).
		Joins("JOIN players p ON p.id = pp.player_id").
		Where("pp.match_id = ? AND pp.set_id IS NOT NULL", matchID).
		Group("pp.player_id, p.name, p.team_id").
		Order("points DESC, p.name ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate match totals: %w", err)
	}
	return totals, nil
}
