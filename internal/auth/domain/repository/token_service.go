package repository

import (
	"context"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Scopes granted by access tokens.
const (
	ScopeOrdersRead  = "orders:read"
	ScopeOrdersWrite = "orders:write"
)

// TokenService defines the interface for token operations
type TokenService interface {
	GenerateToken(ctx context.Context, subject string, scopes []string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents JWT claims
type Claims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}
