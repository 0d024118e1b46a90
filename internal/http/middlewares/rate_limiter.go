package middlewares

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
)

// LimitStore counts hits per key in fixed windows. MemoryLimitStore is per
// process; redisclient.Client shares the counters between replicas.
type LimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, reset time.Time, err error)
}

type RateLimiter struct {
	name   string
	window time.Duration
	limit  int
	store  LimitStore
	prom   *observability.Prom
	log    *slog.Logger
}

func NewRateLimiter(name string, limit int, window time.Duration, store LimitStore, prom *observability.Prom, log *slog.Logger) *RateLimiter {
	if store == nil {
		store = NewMemoryLimitStore()
	}
	if log == nil {
		log = slog.Default()
	}
	return &RateLimiter{
		name:   name,
		limit:  limit,
		window: window,
		store:  store,
		prom:   prom,
		log:    log,
	}
}

// Middleware returns a gin.HandlerFunc that enforces rate limit for a derived key

func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, reset, err := rl.store.Hit(c.Request.Context(), rl.name+":"+key, rl.window)
		if err != nil {
			// a broken limiter backend must not take the api down
			rl.log.WarnContext(c.Request.Context(), "rate limiter unavailable", "limiter", rl.name, "err", err)
			c.Next()
			return
		}

		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > rl.limit {
			retryAfter := int(time.Until(reset).Seconds())

			if retryAfter < 0 {
				retryAfter = 0
			}

			rl.prom.ObserveRateLimited(rl.name)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again shortly.")
			return
		}

		c.Next()
	}
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

type MemoryLimitStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

func NewMemoryLimitStore() *MemoryLimitStore {
	return &MemoryLimitStore{
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (s *MemoryLimitStore) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.clients[key]

	if !ok || now.After(b.windowEnd) {
		// drop expired buckets once the map gets large
		if len(s.clients) > 10000 {
			for k, old := range s.clients {
				if now.After(old.windowEnd) {
					delete(s.clients, k)
				}
			}
		}

		b = &clientBucket{windowEnd: now.Add(window)}
		s.clients[key] = b
	}

	b.count++
	return b.count, b.windowEnd, nil
}

// helper functions

// the limiter runs ahead of auth on every route, so the caller is only known by IP
func KeyByIP(c *gin.Context) string {
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
