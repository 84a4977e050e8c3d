package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"volleyball-live-system/apperr"
	"volleyball-live-system/logger"
	"volleyball-live-system/models"
)

// RetryPolicy bounds how long a match write may wait on and retry after
// lock conflicts.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsed      time.Duration
	LockTimeout     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      5,
	InitialInterval: 50 * time.Millisecond,
	MaxElapsed:      2 * time.Second,
	LockTimeout:     3 * time.Second,
}

// PostgreSQL error codes that mean "try again".
var retryableCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && retryableCodes[pgErr.Code]
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func parseID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("%s id %q is not a valid UUID", kind, id)
	}
	return nil
}

// withMatchLock runs fn in one transaction holding a FOR UPDATE lock on the
// match row, so writers of the same match are serialized. Lock conflicts
// are retried with exponential backoff; once the budget is spent the caller
// gets a ConflictError. fn may run more than once and must not leak state
// between attempts.
func (s *MatchService) withMatchLock(ctx context.Context, op, matchID string, fn func(tx *gorm.DB, m *models.Match) error) error {
	if err := parseID("match", matchID); err != nil {
		return err
	}

	attempt := func() error {
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if s.retry.LockTimeout > 0 {
				stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.retry.LockTimeout.Milliseconds())
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}

			var m models.Match
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", matchID).
				First(&m).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("match %s not found", matchID)
			}
			if err != nil {
				return err
			}
			return fn(tx, &m)
		})
		if err == nil || isRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialInterval
	b.MaxElapsedTime = s.retry.MaxElapsed
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.retry.MaxRetries), ctx)

	err := backoff.RetryNotify(attempt, policy, func(err error, wait time.Duration) {
		logger.WarnCtx(ctx, "Retrying match transaction after conflict",
			zap.String("operation", op),
			zap.String("match_id", matchID),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case isRetryable(err):
		return apperr.Conflict("match %s is being modified concurrently, retry the request", matchID)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperr.Internal(err, "%s failed", op)
}
