package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/identity"
)

// RateLimiter implements a per-user sliding-window rate limiter for grading
// submissions. The key is the user ID only, so rotating tab sessions does
// not bypass it.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter and starts its eviction goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := rl.freshLocked(key, now.Add(-rl.window))
	if len(recent) >= rl.limit {
		rl.requests[key] = recent
		return false
	}
	rl.requests[key] = append(recent, now)
	return true
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := identity.UserIDFromContext(r.Context())
		if !rl.Allow(userID) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			Error(w, http.StatusTooManyRequests, "too many submissions, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop ends the eviction goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) freshLocked(key string, cutoff time.Time) []time.Time {
	var fresh []time.Time
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}
	return fresh
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for key := range rl.requests {
				if fresh := rl.freshLocked(key, cutoff); len(fresh) == 0 {
					delete(rl.requests, key)
				} else {
					rl.requests[key] = fresh
				}
			}
			rl.mu.Unlock()
		}
	}
}
