package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"volleyball-live-system/logger"
)

const (
	UserIDKey    = "user_id"
	UserRolesKey = "user_roles"
)

// UserContextMiddleware copies the caller identity forwarded by the gateway
// (X-User-ID, X-User-Roles) into the request locals, unless a JWT already
// set it.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, _ := c.Locals(UserIDKey).(string); id != "" {
			return c.Next()
		}

		userID := strings.TrimSpace(c.Get("X-User-ID"))
		roles := splitRoles(c.Get("X-User-Roles"))

		c.Locals(UserIDKey, userID)
		c.Locals(UserRolesKey, roles)

		if userID != "" {
			logger.Debug("[USER_CTX] caller", zap.String("user_id", userID), zap.Strings("roles", roles), zap.String("path", c.Path()))
		}
		return c.Next()
	}
}

// RequireCaller rejects requests without a caller identity. It guards the
// routes that change match state.
func RequireCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CallerID(c) == "" {
			logger.Warn("[USER_CTX] caller required but missing", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must come through the gateway with a caller",
				"code":  "unauthorized",
			})
		}
		return c.Next()
	}
}

func CallerID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func CallerRoles(c *fiber.Ctx) []string {
	roles, _ := c.Locals(UserRolesKey).([]string)
	return roles
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
