package services

import (
	"context"

	"go.uber.org/zap"

	"volleyball-live-system/logger"
	"volleyball-live-system/messaging"
	"volleyball-live-system/scoring"
)

// SetCompleted is produced when a set closes. The set manager only reports
// it; deciding whether the match is over belongs to the caller.
type SetCompleted struct {
	MatchID      string
	SetNumber    int
	HomeScore    int
	AwayScore    int
	DurationSec  *int64
	Winner       scoring.Side
	WinnerTeamID string
	SetsWon      scoring.Tally
}

// MatchDecided reports the side that has won the match, if any.
func (e SetCompleted) MatchDecided() (scoring.Side, bool) {
	return e.SetsWon.Winner()
}

// ChangeNotifier is told about every committed write so cached aggregates
// can be invalidated.
type ChangeNotifier interface {
	MarkDirty()
}

// afterCommit runs once a write transaction has committed. Publishing is
// best effort: the write already happened and stays.
func (s *MatchService) afterCommit(ctx context.Context, events ...messaging.LiveEvent) {
	if s.notifier != nil {
		s.notifier.MarkDirty()
	}
	for _, ev := range events {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			logger.WarnCtx(ctx, "Failed to publish live event",
				zap.String("match_id", ev.MatchID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
		}
	}
}
