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

// CounterStore counts hits per key inside a fixed window. redisclient.Client satisfies it.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, windowLeft time.Duration, err error)
}

type RateLimiter struct {
	store  CounterStore
	prefix string
	window time.Duration
	limit  int
	log    *slog.Logger
}

func NewRateLimiter(store CounterStore, prefix string, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	if store == nil {
		store = NewMemoryCounter()
	}
	if log == nil {
		log = slog.Default()
	}
	return &RateLimiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window,
		log:    log,
	}
}

// Middleware returns a gin.HandlerFunc that enforces rate limit for a derived key

func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, left, err := rl.store.Incr(c.Request.Context(), "ratelimit:"+rl.prefix+":"+key, rl.window)
		if err != nil {
			// fail open when the counter store is unreachable
			rl.log.WarnContext(c.Request.Context(), "rate limiter store failed", "err", err)
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			retryAfter := int(left.Seconds())

			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

// MemoryCounter is the single-process CounterStore used when no redis is configured.
type MemoryCounter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
	swept   time.Time
}

// sweepEvery bounds how often Incr scans the whole map for expired buckets.
const sweepEvery = time.Minute

type clientBucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	b, ok := m.clients[key]

	if !ok || now.After(b.windowEnd) {
		b = &clientBucket{windowEnd: now.Add(window)}
		m.clients[key] = b
	}

	b.count++
	return b.count, b.windowEnd.Sub(now), nil
}

// sweep drops buckets whose window has closed. Callers hold m.mu.
func (m *MemoryCounter) sweep(now time.Time) {
	if now.Sub(m.swept) < sweepEvery {
		return
	}
	m.swept = now

	for key, b := range m.clients {
		if now.After(b.windowEnd) {
			delete(m.clients, key)
		}
	}
}

// helper functions

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
