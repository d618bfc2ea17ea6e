package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"yatube/internal/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Limit is a fixed-window allowance for one form submission type.
type Limit struct {
	Action string
	Max    int
	Window time.Duration
}

var (
	SignupLimit  = Limit{Action: "signup", Max: 5, Window: 10 * time.Minute}
	LoginLimit   = Limit{Action: "login", Max: 10, Window: 15 * time.Minute}
	CommentLimit = Limit{Action: "comment", Max: 30, Window: time.Minute}
)

var errNoRedis = errors.New("rate limit store unavailable")

// Limiter counts submissions per visitor in Redis.
// A disabled limiter allows everything; so does an enabled one without Redis
// unless FailClosed is set (RATE_LIMIT_FAIL_CLOSED).
type Limiter struct {
	rdb        *redis.Client
	enabled    bool
	FailClosed bool
}

func NewLimiter(rdb *redis.Client, enabled bool) *Limiter {
	return &Limiter{rdb: rdb, enabled: enabled}
}

// Allow records one attempt by who and reports whether it is within lim.
// When it is not, retryAfter says how long until the window resets.
func (l *Limiter) Allow(ctx context.Context, lim Limit, who string) (allowed bool, retryAfter time.Duration, err error) {
	if l == nil || !l.enabled {
		return true, 0, nil
	}
	if l.rdb == nil {
		return false, 0, errNoRedis
	}

	key := cache.RateLimitKey(lim.Action, who)
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, lim.Window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if cnt <= int64(lim.Max) {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = lim.Window
	}
	return false, ttl, nil
}

// Handler enforces lim on the route it guards. Signed-in visitors are counted
// by user id, everyone else by remote address.
func (l *Limiter) Handler(lim Limit) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := "ip:" + c.IP()
		if uid, ok := CurrentUserID(c); ok {
			who = "user:" + strconv.FormatUint(uint64(uid), 10)
		}

		allowed, retryAfter, err := l.Allow(c.UserContext(), lim, who)
		if err != nil {
			if !l.FailClosed {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit unavailable",
				"action", lim.Action, "error", err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "rate limit unavailable")
		}
		if !allowed {
			secs := int(retryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts, try again later.")
		}
		return c.Next()
	}
}
