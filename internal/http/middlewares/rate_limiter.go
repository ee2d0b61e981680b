package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// A Limiter counts hits per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
}

// RateLimitMetrics is satisfied by *observability.Prom.
type RateLimitMetrics interface {
	RateLimitHit(limiter string)
}

type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

// NewRateLimiter keeps its counters in process memory. Use it when redis is
// not configured or for a single instance.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]

	if !ok || now.After(b.windowEnd) {
		rl.sweep(now)
		rl.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(rl.window),
		}
		return true, 0, nil
	}

	if b.count >= rl.limit {
		return false, b.windowEnd.Sub(now), nil
	}

	b.count++
	return true, 0, nil
}

// sweep drops expired buckets so the map does not grow with every client
// ever seen. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.clients {
		if now.After(b.windowEnd) {
			delete(rl.clients, k)
		}
	}
}

// WindowCounter is the subset of the redis client used here.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisLimiter shares counters between API instances.
type RedisLimiter struct {
	counter WindowCounter
	prefix  string
	limit   int
	window  time.Duration
}

func NewRedisLimiter(counter WindowCounter, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{counter: counter, prefix: prefix, limit: limit, window: window}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	n, left, err := rl.counter.IncrWindow(ctx, "ratelimit:"+rl.prefix+":"+key, rl.window)
	if err != nil {
		return false, 0, err
	}

	if n > int64(rl.limit) {
		return false, left, nil
	}
	return true, 0, nil
}

// RateLimit enforces limiter for the key derived by keyFn. A limiter error
// lets the request through; an unreachable redis must not take the API down.
func RateLimit(name string, limiter Limiter, keyFn func(*gin.Context) string, metrics RateLimitMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		ok, retryAfter, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Default().WarnContext(c.Request.Context(), "rate limiter unavailable",
				"limiter", name,
				"err", err,
			)
			c.Next()
			return
		}

		if !ok {
			if metrics != nil {
				metrics.RateLimitHit(name)
			}

			secs := int(retryAfter.Round(time.Second).Seconds())
			if secs < 1 {
				secs = 1
			}

			c.Header("Retry-After", strconv.Itoa(secs))
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// For authenticated endpoints: rate limit by user if available
func KeyByUserOrIP(c *gin.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return "user:" + strconv.FormatInt(p.UserID, 10)
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
