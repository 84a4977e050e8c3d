package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"volleyball-live-system/apperr"
	"volleyball-live-system/models"
)

type TopScorer struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
}

type MostWins struct {
	TeamID  string `json:"team_id"`
	Name    string `json:"name"`
	SetsWon int    `json:"sets_won"`
}

// Statistics are the cross-match aggregates shown on the dashboard.
type Statistics struct {
	TotalMatches int64      `json:"total_matches"`
	TotalTeams   int64      `json:"total_teams"`
	TopScorer    *TopScorer `json:"top_scorer"`
	MostWins     *MostWins  `json:"most_wins"`
	Version      int64      `json:"version"`
	ComputedAt   time.Time  `json:"computed_at"`
}

// StatisticsService caches Statistics against a version counter. Writers
// bump the counter through MarkDirty; a read recomputes only when the
// cached copy is older than the counter.
type StatisticsService struct {
	DB *gorm.DB

	version atomic.Int64
	mu      sync.Mutex
	cached  *Statistics
	now     func() time.Time
}

func NewStatisticsService(db *gorm.DB) *StatisticsService {
	return &StatisticsService{DB: db, now: time.Now}
}

func (s *StatisticsService) MarkDirty() {
	s.version.Add(1)
}

func (s *StatisticsService) Version() int64 {
	return s.version.Load()
}

// Current returns the statistics for the current version.
func (s *StatisticsService) Current(ctx context.Context) (*Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.version.Load()
	if s.cached != nil && s.cached.Version == v {
		out := *s.cached
		return &out, nil
	}

	stats, err := s.compute(ctx, v)
	if err != nil {
		return nil, apperr.Internal(err, "failed to compute statistics")
	}
	s.cached = stats
	out := *stats
	return &out, nil
}

// Refresh recomputes the statistics regardless of the cached version,
// replaces the cache and persists a snapshot. It catches writes that never
// reached MarkDirty.
func (s *StatisticsService) Refresh(ctx context.Context) (*Statistics, error) {
	s.mu.Lock()
	computed, err := s.compute(ctx, s.version.Load())
	if err == nil {
		s.cached = computed
	}
	s.mu.Unlock()
	if err != nil {
		return nil, apperr.Internal(err, "failed to compute statistics")
	}
	stats := *computed

	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("marshal statistics: %w", err)
	}
	snapshot := models.StatisticsSnapshot{
		ID:         uuid.NewString(),
		Version:    stats.Version,
		Payload:    datatypes.JSON(payload),
		ComputedAt: stats.ComputedAt,
	}
	if err := s.DB.WithContext(ctx).Create(&snapshot).Error; err != nil {
		return nil, fmt.Errorf("persist statistics snapshot: %w", err)
	}
	return &stats, nil
}

func (s *StatisticsService) compute(ctx context.Context, version int64) (*Statistics, error) {
	db := s.DB.WithContext(ctx)
	stats := &Statistics{Version: version, ComputedAt: s.now().UTC()}

	if err := db.Model(&models.Match{}).Count(&stats.TotalMatches).Error; err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}
	if err := db.Model(&models.Team{}).Count(&stats.TotalTeams).Error; err != nil {
		return nil, fmt.Errorf("count teams: %w", err)
	}

	var scorer TopScorer
	err := db.Raw(`SELECT pp.player_id, p.name, SUM(pp.points) AS points
		FROM player_performances pp
		JOIN players p ON p.id = pp.player_id
		WHERE pp.set_id IS NOT NULL AND p.deleted_at IS NULL
		GROUP BY pp.player_id, p.name
		HAVING SUM(pp.points) > 0
		ORDER BY points DESC, p.name ASC
		LIMIT 1`).Scan(&scorer).Error
	if err != nil {
		return nil, fmt.Errorf("top scorer: %w", err)
	}
	if scorer.PlayerID != "" {
		stats.TopScorer = &scorer
	}

	var wins MostWins
	err = db.Raw(`SELECT t.id AS team_id, t.name, COUNT(*) AS sets_won
		FROM match_sets s
		JOIN matches m ON m.id = s.match_id AND m.deleted_at IS NULL
		JOIN teams t ON t.id = CASE WHEN s.home_score > s.away_score THEN m.home_team_id ELSE m.away_team_id END
		WHERE s.end_time IS NOT NULL AND s.home_score <> s.away_score
		GROUP BY t.id, t.name
		ORDER BY sets_won DESC, t.name ASC
		LIMIT 1`).Scan(&wins).Error
	if err != nil {
		return nil, fmt.Errorf("most wins: %w", err)
	}
	if wins.TeamID != "" {
		stats.MostWins = &wins
	}
	return stats, nil
}
