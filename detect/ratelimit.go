package detect

import (
	"sync"
	"time"
)

// RateLimiter caps how often the external NER server is called. NER
// inference is the expensive hop of the pipeline; a runaway caller should
// fail fast here instead of queueing on the model.
type RateLimiter struct {
	// Map to track call counts by key (detector name, caller ID, etc.)
	counters     map[string]*rateLimitEntry
	mu           sync.Mutex
	maxRequests  int           // maximum calls per window
	windowPeriod time.Duration // time window for rate limiting
}

// rateLimitEntry represents an entry in the rate limit counter
type rateLimitEntry struct {
	count       int       // number of calls in current window
	windowStart time.Time // start time of current window
}

// NewRateLimiter creates a new rate limiter with the specified configuration
func NewRateLimiter(maxRequests int, windowPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		counters:     make(map[string]*rateLimitEntry),
		maxRequests:  maxRequests,
		windowPeriod: windowPeriod,
	}
}

// CheckLimit checks if the rate limit for the given key has been
// exceeded, returning the limited flag, the current count, and the time
// the window resets
func (r *RateLimiter) CheckLimit(key string) (bool, int, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, ok := r.counters[key]

	// If no entry exists or the window has expired, start a new window
	if !ok || now.Sub(entry.windowStart) > r.windowPeriod {
		r.counters[key] = &rateLimitEntry{
			count:       1,
			windowStart: now,
		}
		return false, 1, now.Add(r.windowPeriod)
	}

	entry.count++

	if entry.count > r.maxRequests {
		return true, entry.count, entry.windowStart.Add(r.windowPeriod)
	}

	return false, entry.count, entry.windowStart.Add(r.windowPeriod)
}
