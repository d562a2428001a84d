package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
	BurstLimit        int // max requests within one second
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 60,
		RequestsPerHour:   1000,
		BurstLimit:        10,
	}
}

// sweepInterval bounds how often the full key sweep runs.
const sweepInterval = time.Minute

// RateLimiter is an in-memory sliding-window limiter keyed by client IP.
// State is explicit and mutex-guarded; windows are pruned on every check and
// keys whose windows have fully expired are swept periodically, so the maps
// do not grow with every client ever seen.
type RateLimiter struct {
	mu        sync.Mutex
	config    RateLimitConfig
	seconds   map[string][]time.Time
	minutes   map[string][]time.Time
	hours     map[string][]time.Time
	lastSweep time.Time
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:  config,
		seconds: make(map[string][]time.Time),
		minutes: make(map[string][]time.Time),
		hours:   make(map[string][]time.Time),
	}
}

func pruneWindow(window []time.Time, now time.Time, maxAge time.Duration) []time.Time {
	kept := window[:0]
	for _, t := range window {
		if now.Sub(t) < maxAge {
			kept = append(kept, t)
		}
	}
	return kept
}

// maybeSweep drops keys whose windows have fully expired. Caller holds the
// mutex.
func (l *RateLimiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	sweepMap(l.seconds, now, time.Second)
	sweepMap(l.minutes, now, time.Minute)
	sweepMap(l.hours, now, time.Hour)
}

func sweepMap(m map[string][]time.Time, now time.Time, maxAge time.Duration) {
	for key, window := range m {
		window = pruneWindow(window, now, maxAge)
		if len(window) == 0 {
			delete(m, key)
		} else {
			m[key] = window
		}
	}
}

// Allow reports whether the key may proceed and, when rejected, how many
// seconds to wait before retrying.
func (l *RateLimiter) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.maybeSweep(now)
	l.seconds[key] = pruneWindow(l.seconds[key], now, time.Second)
	l.minutes[key] = pruneWindow(l.minutes[key], now, time.Minute)
	l.hours[key] = pruneWindow(l.hours[key], now, time.Hour)

	if len(l.seconds[key]) >= l.config.BurstLimit {
		return false, 1
	}
	if len(l.minutes[key]) >= l.config.RequestsPerMinute {
		return false, retryAfter(l.minutes[key], now, time.Minute)
	}
	if len(l.hours[key]) >= l.config.RequestsPerHour {
		return false, retryAfter(l.hours[key], now, time.Hour)
	}

	l.seconds[key] = append(l.seconds[key], now)
	l.minutes[key] = append(l.minutes[key], now)
	l.hours[key] = append(l.hours[key], now)
	return true, 0
}

func retryAfter(window []time.Time, now time.Time, maxAge time.Duration) int {
	if len(window) == 0 {
		return 1
	}
	wait := int((maxAge - now.Sub(window[0])).Seconds())
	if wait < 1 {
		wait = 1
	}
	return wait
}

func (l *RateLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	remaining := l.config.RequestsPerMinute - len(l.minutes[key])
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// RateLimit enforces per-IP limits. Health checks are exempt.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "/api/health" {
			c.Next()
			return
		}

		key := c.ClientIP()
		allowed, wait := limiter.Allow(key)
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(wait))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": wait,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limiter.Remaining(key)))
		c.Next()
	}
}
