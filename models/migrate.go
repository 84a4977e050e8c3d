package models

import (
	"fmt"

	"gorm.io/gorm"
)

// performanceIndexes give each granularity of PlayerPerformance its own
// uniqueness: one match-level row and one row per set for each player.
var performanceIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_player_performances_match_level
		ON player_performances (player_id, match_id) WHERE set_id IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_player_performances_set_level
		ON player_performances (player_id, match_id, set_id) WHERE set_id IS NOT NULL`,
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Team{},
		&Player{},
		&Match{},
		&Set{},
		&PlayerPerformance{},
		&PointEvent{},
		&Weather{},
		&MatchReport{},
		&StatisticsSnapshot{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, stmt := range performanceIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create performance index: %w", err)
		}
	}
	return nil
}
