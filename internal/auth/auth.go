package auth

import (
	"fmt"

	authhttp "mongo-tracing/internal/auth/adapter/http"
	"mongo-tracing/internal/auth/adapter/security"
	"mongo-tracing/internal/auth/domain/repository"
	"mongo-tracing/internal/config"
	"mongo-tracing/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthModule guards the orders API with bearer tokens.
type AuthModule struct {
	TokenService repository.TokenService
	Middleware   *authhttp.AuthMiddleware
	config       config.AuthConfig
}

// NewAuthModule creates a new authentication module instance
func NewAuthModule(cfg config.AuthConfig, log logger.Logger) (*AuthModule, error) {
	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	return &AuthModule{
		TokenService: tokenSvc,
		Middleware:   authhttp.NewAuthMiddleware(tokenSvc, log),
		config:       cfg,
	}, nil
}

// Protect installs token checks on the REST and websocket prefixes. Reads
// need orders:read and writes need orders:write.
func (am *AuthModule) Protect(router fiber.Router) {
	for _, prefix := range []string{"/v1", "/ws"} {
		router.Use(prefix,
			am.Middleware.Protect(),
			am.Middleware.RequireScope(repository.ScopeOrdersRead, fiber.MethodGet, fiber.MethodHead),
			am.Middleware.RequireScope(repository.ScopeOrdersWrite, fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete),
		)
	}
}
