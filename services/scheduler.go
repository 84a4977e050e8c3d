package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"volleyball-live-system/logger"
)

// StartRefreshScheduler persists a statistics snapshot every interval.
// The caller shuts the scheduler down.
func (s *StatisticsService) StartRefreshScheduler(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			stats, err := s.Refresh(ctx)
			if err != nil {
				logger.Error(err, zap.String("job", "statistics_refresh"))
				return
			}
			logger.Debug("Statistics snapshot stored",
				zap.Int64("version", stats.Version),
				zap.Int64("total_matches", stats.TotalMatches))
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
