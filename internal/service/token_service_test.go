package service

import (
	"context"
	"testing"
	"time"

	"yatube/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters!!"

func TestTokenService_IssueVerifyRevoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	svc := NewTokenService(testSecret, rdb)
	token, exp, err := svc.Issue(&models.User{ID: 42, Username: "leo"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), exp, time.Minute)

	uid, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)

	require.NoError(t, svc.Revoke(ctx, token))
	_, err = svc.Verify(ctx, token)
	assertUnauthorizedError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "blacklist:")
	assert.Greater(t, mr.TTL(keys[0]), 6*24*time.Hour)
}

func TestTokenService_RejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService(testSecret, nil)

	other := NewTokenService("another-secret-at-least-32-characters", nil)
	foreign, _, err := other.Issue(&models.User{ID: 1})
	require.NoError(t, err)
	_, err = svc.Verify(ctx, foreign)
	assertUnauthorizedError(t, err)

	expired := NewTokenService(testSecret, nil)
	expired.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	old, _, err := expired.Issue(&models.User{ID: 1})
	require.NoError(t, err)
	_, err = svc.Verify(ctx, old)
	assertUnauthorizedError(t, err)

	wrongAud := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1", "iss": TokenIssuer, "aud": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := wrongAud.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Verify(ctx, raw)
	assertUnauthorizedError(t, err)

	noneAlg := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "iss": TokenIssuer, "aud": TokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err = noneAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, raw)
	assertUnauthorizedError(t, err)

	_, err = svc.Verify(ctx, "not-a-jwt")
	assertUnauthorizedError(t, err)

	assert.NoError(t, svc.Revoke(ctx, "not-a-jwt"), "revoking without redis is a no-op")
}
