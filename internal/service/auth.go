package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chirper/internal/model"
)

// SessionRevoker remembers logged-out tokens until they expire.
type SessionRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims are the session token claims. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's id.
func (c *Claims) UserID() string { return c.Subject }

// AuthService is the Auth Collaborator: it issues and verifies HS256 session
// tokens. Revocation is optional; without a revoker logout only clears the
// cookie.
type AuthService struct {
	secret  []byte
	ttl     time.Duration
	revoker SessionRevoker
	log     *zap.Logger
}

func NewAuthService(secret string, ttl time.Duration, revoker SessionRevoker, log *zap.Logger) *AuthService {
	if ttl <= 0 {
		ttl = model.DefaultTokenMaxAge
	}
	return &AuthService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		log:     log.Named("auth_service"),
	}
}

// TokenTTL is the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration { return s.ttl }

// IssueToken signs a new session token for userID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies tokenString and checks it was not revoked.
func (s *AuthService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, model.ErrMissingToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, model.ErrTokenInvalid
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, model.ErrTokenRevoked
		}
	}

	return claims, nil
}

// Revoke invalidates the token described by claims until it expires.
func (s *AuthService) Revoke(ctx context.Context, claims *Claims) error {
	if s.revoker == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.log.Error("failed to revoke session", zap.String("user_id", claims.Subject), zap.Error(err))
		return err
	}
	return nil
}
