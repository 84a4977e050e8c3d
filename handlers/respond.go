package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"volleyball-live-system/apperr"
	"volleyball-live-system/logger"
)

// respondError renders service errors. Typed errors go out with their kind
// and details; anything else is logged with the operation context and
// answered with a generic 500.
func respondError(c *fiber.Ctx, op, matchID string, err error, inputs ...zap.Field) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		body := fiber.Map{
			"error": appErr.Message,
			"code":  appErr.Kind,
		}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		return c.Status(apperr.HTTPStatus(appErr)).JSON(body)
	}

	fields := append([]zap.Field{
		zap.String("operation", op),
		zap.String("match_id", matchID),
		zap.String("path", c.Path()),
	}, inputs...)
	logger.ErrorCtx(c.UserContext(), err, fields...)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
		"code":  apperr.KindInternal,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"code":  apperr.KindValidation,
	})
}

// parseDate accepts RFC3339 timestamps and plain dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q: use RFC3339 or YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}
