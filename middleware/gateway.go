package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"volleyball-live-system/config"
	"volleyball-live-system/logger"
)

// GatewayAuthMiddleware accepts requests that carry either the shared
// gateway token or an HS256 JWT signed with the configured secret. A valid
// JWT also sets the caller identity from its "sub" and "roles" claims.
func GatewayAuthMiddleware(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.Warn("[GATEWAY_AUTH] Missing Authorization header", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
				"code":  "unauthorized",
			})
		}

		// Bare tokens without the "Bearer " prefix are accepted as well.
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if cfg.GatewayToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(cfg.GatewayToken)) == 1 {
			return c.Next()
		}

		if cfg.JWTSecret != "" {
			if userID, roles, ok := parseCallerJWT(token, cfg.JWTSecret); ok {
				c.Locals(UserIDKey, userID)
				c.Locals(UserRolesKey, roles)
				return c.Next()
			}
		}

		logger.Warn("[GATEWAY_AUTH] Invalid token", zap.String("path", c.Path()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid gateway authentication token",
			"code":  "unauthorized",
		})
	}
}

func parseCallerJWT(raw, secret string) (string, []string, bool) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", nil, false
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", nil, false
	}

	var roles []string
	switch v := claims["roles"].(type) {
	case []interface{}:
		for _, r := range v {
			if s, ok := r.(string); ok && s != "" {
				roles = append(roles, s)
			}
		}
	case string:
		roles = splitRoles(v)
	}
	return sub, roles, true
}
