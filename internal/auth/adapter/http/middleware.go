package http

import (
	"slices"
	"strings"

	"mongo-tracing/internal/auth/domain/repository"
	"mongo-tracing/internal/shared/logger"
	"mongo-tracing/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

const claimsLocal = "auth_claims"

// AuthMiddleware checks bearer tokens on protected routes.
type AuthMiddleware struct {
	tokens repository.TokenService
	log    logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokens repository.TokenService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		log:    log.WithComponent("auth"),
	}
}

// Protect returns middleware that requires a valid token. The subject is
// added to the request context for logging.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return unauthorized(c, "authentication required")
		}

		claims, err := m.tokens.ValidateToken(c.UserContext(), token)
		if err != nil {
			m.log.WithContext(c.UserContext()).WithError(err).Debug("rejected bearer token")
			return unauthorized(c, "invalid token")
		}

		c.Locals(claimsLocal, claims)
		c.SetUserContext(utils.WithSubject(c.UserContext(), claims.Subject))
		return c.Next()
	}
}

// RequireScope returns middleware that answers 403 unless the token from
// Protect grants scope. With methods given, other methods pass through.
func (m *AuthMiddleware) RequireScope(scope string, methods ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(methods) > 0 && !slices.Contains(methods, c.Method()) {
			return c.Next()
		}
		claims, ok := GetClaims(c)
		if !ok {
			return unauthorized(c, "authentication required")
		}
		if !claims.HasScope(scope) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "token lacks scope " + scope,
			})
		}
		return c.Next()
	}
}

// GetClaims returns the claims stored by Protect.
func GetClaims(c *fiber.Ctx) (*repository.Claims, bool) {
	claims, ok := c.Locals(claimsLocal).(*repository.Claims)
	return claims, ok
}

// extractToken reads the Authorization header, falling back to the
// access_token query parameter that browser websocket clients must use.
func extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("access_token")
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="mongo-tracing"`)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": message,
	})
}
