package ratelimit

import (
	"context"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"math"
	"net/http"
	"opsched/cmd/internal/utils/apierror"
	"strings"
	"time"
)

// RedisStore is a fixed-window limiter shared by every instance pointing at
// the same Redis. It implements echo's middleware.RateLimiterStore.
type RedisStore struct {
	rdb     *redis.Client
	limit   int64
	window  time.Duration
	prefix  string
	timeout time.Duration
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewRedisStore(rdb *redis.Client, limit int, window time.Duration, prefix string) *RedisStore {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisStore{rdb: rdb, limit: int64(limit), window: window, prefix: prefix, timeout: time.Second}
}

// Allow fails open: a Redis outage must not take the API down with it.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, s.rdb, []string{s.key(identifier)}, s.window.Milliseconds()).Int64()
	if err != nil {
		log.Warnf("redis rate limiter error: %v", err)
		return true, nil
	}
	return count <= s.limit, nil
}

func (s *RedisStore) key(identifier string) string {
	return s.prefix + ":" + identifier
}

// NewStore picks Redis when redisURL is set and an in-process token bucket otherwise.
// The returned close func releases the Redis client.
func NewStore(redisURL string, rps float64) (middleware.RateLimiterStore, func() error, error) {
	if redisURL == "" {
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     int(math.Ceil(rps * 2)),
			ExpiresIn: 3 * time.Minute,
		})
		return store, func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	perMinute := int(math.Ceil(rps * 60))
	return NewRedisStore(rdb, perMinute, time.Minute, "opsched:rl"), rdb.Close, nil
}

func Middleware(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, apierror.NewSimple(http.StatusForbidden, "Unable to identify client"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(apierror.RateLimitedError.Code(), apierror.RateLimitedError)
		},
	})
}
