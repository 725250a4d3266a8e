package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chirper/internal/model"
)

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Time)}
}

func (r *fakeRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.revoked[jti] = expiresAt
	return nil
}

func (r *fakeRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[jti]
	return ok, nil
}

const testSecret = "test-secret"

func TestAuthService_IssueAndParse(t *testing.T) {
	svc := NewAuthService(testSecret, time.Hour, nil, zap.NewNop())

	token, err := svc.IssueToken("user-1")
	require.NoError(t, err)

	claims, err := svc.ParseToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	other, err := svc.IssueToken("user-1")
	require.NoError(t, err)
	otherClaims, err := svc.ParseToken(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID, "each token gets its own id")
}

func TestAuthService_DefaultTTL(t *testing.T) {
	svc := NewAuthService(testSecret, 0, nil, zap.NewNop())
	assert.Equal(t, model.DefaultTokenMaxAge, svc.TokenTTL())
}

func signWith(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	svc := NewAuthService(testSecret, time.Hour, nil, zap.NewNop())
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "user-1",
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	noExpiry := valid
	noExpiry.ExpiresAt = nil

	noSubject := valid
	noSubject.Subject = ""

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", model.ErrMissingToken},
		{"garbage", "not.a.token", model.ErrTokenInvalid},
		{"wrong secret", signWith(t, jwt.SigningMethodHS256, []byte("other"), valid), model.ErrTokenInvalid},
		{"wrong algorithm", signWith(t, jwt.SigningMethodHS512, []byte(testSecret), valid), model.ErrTokenInvalid},
		{"alg none", signWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), model.ErrTokenInvalid},
		{"expired", signWith(t, jwt.SigningMethodHS256, []byte(testSecret), expired), model.ErrTokenExpired},
		{"no expiry", signWith(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry), model.ErrTokenInvalid},
		{"no subject", signWith(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject), model.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ParseToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, model.ErrAuthentication)
			assert.Nil(t, claims)
		})
	}
}

func TestAuthService_Revoke(t *testing.T) {
	revoker := newFakeRevoker()
	svc := NewAuthService(testSecret, time.Hour, revoker, zap.NewNop())
	ctx := context.Background()

	token, err := svc.IssueToken("user-1")
	require.NoError(t, err)
	claims, err := svc.ParseToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, claims))
	assert.Equal(t, claims.ExpiresAt.Time, revoker.revoked[claims.ID])

	_, err = svc.ParseToken(ctx, token)
	assert.ErrorIs(t, err, model.ErrTokenRevoked)

	fresh, err := svc.IssueToken("user-1")
	require.NoError(t, err)
	_, err = svc.ParseToken(ctx, fresh)
	assert.NoError(t, err, "other sessions stay valid")
}

func TestAuthService_RevokerUnavailable(t *testing.T) {
	revoker := newFakeRevoker()
	svc := NewAuthService(testSecret, time.Hour, revoker, zap.NewNop())
	token, err := svc.IssueToken("user-1")
	require.NoError(t, err)

	revoker.err = model.Transient("redis", errors.New("connection refused"))
	_, err = svc.ParseToken(context.Background(), token)
	assert.ErrorIs(t, err, model.ErrTransient)
}

func TestAuthService_RevokeWithoutRevoker(t *testing.T) {
	svc := NewAuthService(testSecret, time.Hour, nil, zap.NewNop())
	token, err := svc.IssueToken("user-1")
	require.NoError(t, err)
	claims, err := svc.ParseToken(context.Background(), token)
	require.NoError(t, err)

	assert.NoError(t, svc.Revoke(context.Background(), claims))
	_, err = svc.ParseToken(context.Background(), token)
	assert.NoError(t, err)
}
