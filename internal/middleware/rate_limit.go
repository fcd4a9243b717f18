package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter hands out one token bucket per key. Buckets idle for longer
// than idle are swept on access.
type KeyedLimiter[K comparable] struct {
	mu       sync.Mutex
	limiters map[K]*limiterEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	swept    time.Time
	now      func() time.Time
}

func NewKeyedLimiter[K comparable](perSecond float64, burst int, idle time.Duration) *KeyedLimiter[K] {
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter[K]{
		limiters: make(map[K]*limiterEntry),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

// Allow reports whether key may proceed now.
func (l *KeyedLimiter[K]) Allow(key K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.idle > 0 && now.Sub(l.swept) > l.idle {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.limiters, k)
			}
		}
		l.swept = now
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len is the number of live buckets.
func (l *KeyedLimiter[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(limiter *KeyedLimiter[string]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
