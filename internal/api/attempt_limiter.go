package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultAttemptLimiterKeys = 10000

// attemptLimiter counts failed attempts per key inside a sliding window.
// Stale keys are swept once per window and the map never holds more than
// maxKeys entries; past that the key with the oldest last failure goes.
type attemptLimiter struct {
	mu        sync.Mutex
	attempts  map[string][]time.Time
	limit     int
	window    time.Duration
	maxKeys   int
	lastSweep time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		maxKeys:  defaultAttemptLimiterKeys,
	}
}

func (limiter *attemptLimiter) tooManyRecent(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	return len(limiter.pruneLocked(key, now)) >= limiter.limit
}

func (limiter *attemptLimiter) addFailure(key string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	pruned := limiter.pruneLocked(key, now)
	if pruned == nil {
		limiter.makeRoomLocked(now)
	}
	limiter.attempts[key] = append(pruned, now)
}

func (limiter *attemptLimiter) size() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return len(limiter.attempts)
}

// makeRoomLocked runs before a new key is stored.
func (limiter *attemptLimiter) makeRoomLocked(now time.Time) {
	if now.Sub(limiter.lastSweep) >= limiter.window || len(limiter.attempts) >= limiter.maxKeys {
		for key := range limiter.attempts {
			limiter.pruneLocked(key, now)
		}
		limiter.lastSweep = now
	}

	for len(limiter.attempts) >= limiter.maxKeys {
		oldestKey := ""
		var oldest time.Time
		for key, values := range limiter.attempts {
			last := values[len(values)-1]
			if oldestKey == "" || last.Before(oldest) {
				oldestKey, oldest = key, last
			}
		}
		delete(limiter.attempts, oldestKey)
	}
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.attempts, key)
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time) []time.Time {
	values := limiter.attempts[key]
	if len(values) == 0 {
		return nil
	}

	threshold := now.Add(-limiter.window)
	pruned := values[:0]
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(limiter.attempts, key)
		return nil
	}
	limiter.attempts[key] = pruned
	return pruned
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}

// loginLimiterKey scopes login failures to the client and the attempted email.
func loginLimiterKey(c *fiber.Ctx, email string) string {
	return requestLimiterKey(c) + "|" + strings.TrimSpace(email)
}
