package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-at-least-32-chars"

func newVerifier() *TokenVerifier {
	return NewTokenVerifier(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "pharmapos"})
}

func TestNewTokenVerifier_NoSecret(t *testing.T) {
	assert.Nil(t, NewTokenVerifier(config.AuthConfig{}))
}

func TestVerify_RoundTrip(t *testing.T) {
	v := newVerifier()
	tenantID, userID := uuid.New(), uuid.New()

	token, err := v.Issue(tenantID, userID, time.Minute)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	gotUser, err := claims.UserID()
	require.NoError(t, err)
	gotTenant, err := claims.Tenant()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, tenantID, gotTenant)
}

func TestVerify_Rejections(t *testing.T) {
	v := newVerifier()

	t.Run("expired", func(t *testing.T) {
		token, err := v.Issue(uuid.New(), uuid.New(), -time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenVerifier(config.AuthConfig{JWTSecret: "another-secret-key-of-sufficient-len", JWTIssuer: "pharmapos"})
		token, err := other.Issue(uuid.New(), uuid.New(), time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenVerifier(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "someone-else"})
		token, err := other.Issue(uuid.New(), uuid.New(), time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestClaims_Parsing(t *testing.T) {
	empty := &Claims{}
	id, err := empty.UserID()
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)
	id, err = empty.Tenant()
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	bad := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}, TenantID: "acme"}
	_, err = bad.UserID()
	assert.ErrorIs(t, err, ErrInvalidSubject)
	_, err = bad.Tenant()
	assert.ErrorIs(t, err, ErrInvalidTenant)
}
