package security

import (
	"context"
	"errors"
	"time"

	"mongo-tracing/internal/auth/domain/repository"
	"mongo-tracing/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// JWTokenService issues and validates HS256 access tokens.
type JWTokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

var _ repository.TokenService = (*JWTokenService)(nil)

// NewJWTokenService creates a new JWT token service
func NewJWTokenService(cfg config.AuthConfig) (*JWTokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("jwt issuer cannot be empty")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("jwt access token TTL must be positive")
	}

	return &JWTokenService{
		secretKey: []byte(cfg.JWTSecret),
		issuer:    cfg.Issuer,
		ttl:       cfg.TokenTTL,
		now:       time.Now,
	}, nil
}

// GenerateToken signs a token for subject carrying scopes.
func (s *JWTokenService) GenerateToken(ctx context.Context, subject string, scopes []string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject cannot be empty")
	}
	now := s.now()
	claims := &repository.Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTokenService) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &repository.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*repository.Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
