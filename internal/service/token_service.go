package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"yatube/internal/cache"
	"yatube/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Token claims constants.
const (
	TokenIssuer   = "yatube"
	TokenAudience = "yatube-web"
	TokenTTL      = 7 * 24 * time.Hour
)

// TokenService issues and checks session JWTs. Revoked token ids are kept in Redis.
type TokenService struct {
	secret []byte
	rdb    *redis.Client
	now    func() time.Time
}

// NewTokenService creates a token service; rdb may be nil, which disables revocation.
func NewTokenService(secret string, rdb *redis.Client) *TokenService {
	return &TokenService{secret: []byte(secret), rdb: rdb, now: time.Now}
}

// Issue signs a token for user and returns it with its expiry.
func (s *TokenService) Issue(user *models.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}
	now := s.now()
	exp := now.Add(TokenTTL)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify returns the user id carried by a valid, unrevoked token.
func (s *TokenService) Verify(ctx context.Context, raw string) (uint, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return 0, err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}
	if jti, _ := claims["jti"].(string); jti != "" && s.rdb != nil {
		n, err := s.rdb.Exists(ctx, cache.BlacklistKey(jti)).Result()
		if err == nil && n > 0 {
			return 0, models.NewUnauthorizedError("Token has been revoked")
		}
	}
	return uint(userID), nil
}

// Revoke blacklists the token id until the token would have expired.
// Tokens that no longer parse need no revocation.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	if s.rdb == nil || raw == "" {
		return nil
	}
	claims, err := s.parse(raw)
	if err != nil {
		return nil
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	ttl := exp.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, cache.BlacklistKey(jti), "1", ttl).Err()
}

func (s *TokenService) parse(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	return claims, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
