package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the rate limiter
type RateLimiterConfig struct {
	// RequestsPerSecond is the rate of token refill
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst
	BurstSize int

	// IdleTTL is how long an unused client limiter is kept
	IdleTTL time.Duration

	// KeyFunc extracts the rate limit key from the request.
	// Default: filer ID, then client IP address
	KeyFunc func(r *http.Request) string
}

// DefaultRateLimiterConfig returns the limits applied to the quote API.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		IdleTTL:           10 * time.Minute,
		KeyFunc:           ClientKey,
	}
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	config   RateLimiterConfig
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter. Idle entries are pruned lazily
// on access, so no background goroutine is started.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientKey
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}

	return &RateLimiter{
		config:   config,
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	entry, ok := rl.limiters[key]
	if !ok {
		rl.prune(now)
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize),
		}
		rl.limiters[key] = entry
	}
	entry.lastAccess = now
	rl.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// prune drops idle limiters. Callers hold rl.mu.
func (rl *RateLimiter) prune(now time.Time) {
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastAccess) > rl.config.IdleTTL {
			delete(rl.limiters, key)
		}
	}
}

// Middleware returns an HTTP middleware that applies rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		if !rl.Allow(key) {
			GetLogger(r.Context()).Warn().Str("client", key).Msg("rate limit exceeded")
			w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(rl.config.RequestsPerSecond, 'f', -1, 64))
			w.Header().Set("Retry-After", "1")
			respondTooManyRequests(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit creates a rate limiting middleware with the given config
func RateLimit(config RateLimiterConfig) func(http.Handler) http.Handler {
	return NewRateLimiter(config).Middleware
}

// ClientKey identifies the caller: the filer when the gateway supplied one,
// otherwise the client IP.
func ClientKey(r *http.Request) string {
	if id := domain.FilerIDFromContext(r.Context()); id != "" {
		return "filer:" + id
	}
	return "ip:" + GetClientIP(r)
}

// GetClientIP extracts the client IP from the request
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests)
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
