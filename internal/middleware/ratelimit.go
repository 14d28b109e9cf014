package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/metrics"
	"github.com/iliyamo/event-registration/internal/response"
)

// Decision is the outcome of one counted request.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // time until the current window closes
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (Decision, error)
}

// fixedWindowScript increments the counter and starts the window on the
// first hit. It returns the count and the milliseconds left in the window.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	if ttl < 0 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return { count, ttl }
`)

// RedisLimiter shares counters between instances through Redis.
type RedisLimiter struct{ RDB *redis.Client }

func (l RedisLimiter) Allow(ctx context.Context, key string, max int, window time.Duration) (Decision, error) {
	vals, err := fixedWindowScript.Run(ctx, l.RDB, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	count, ttl := vals[0], vals[1]
	return decide(count, max, time.Duration(ttl)*time.Millisecond), nil
}

// MemoryLimiter keeps counters in process. It is used when Redis is not
// configured, which is fine for a single instance.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*memWindow
	now     func() time.Time
}

type memWindow struct {
	count   int64
	resetAt time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: map[string]*memWindow{}, now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, max int, window time.Duration) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memWindow{resetAt: now.Add(window)}
		l.windows[key] = w
		l.sweep(now)
	}
	w.count++
	return decide(w.count, max, w.resetAt.Sub(now)), nil
}

// sweep drops closed windows so idle keys do not accumulate.
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
		}
	}
}

func decide(count int64, max int, left time.Duration) Decision {
	remaining := int64(max) - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: count <= int64(max), Remaining: int(remaining), RetryAfter: left}
}

// RateLimit rejects a key's requests beyond cfg.Max within cfg.Window with a
// 429 envelope. The check runs before the handler so blocked attempts never
// reach credential verification. When the limiter itself fails the request
// is let through and the error logged.
func RateLimit(cfg config.RateLimitConfig, limiter Limiter, log *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || limiter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			d, err := limiter.Allow(c.Request().Context(), key, cfg.Max, cfg.Window)
			if err != nil {
				log.Warn("ratelimit: limiter error", "key", key, "error", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 0 {
					secs = 0
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				metrics.RateLimitedTotal.Inc()
				if cfg.Debug {
					log.Info("ratelimit: blocked", "key", key, "retry_after", secs)
				}
				return response.Fail(c, http.StatusTooManyRequests, cfg.Message)
			}
			return next(c)
		}
	}
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", userID(c))
	default: // "ip"
		parts = append(parts, "ip", ip)
	}
	return strings.Join(parts, ":")
}
