package middleware

import (
	"net/http"
	"sync"
	"time"

	"courtside/pkg/logger"
)

type PlayerExtractor func(r *http.Request) string

// PlayerRateLimiter bounds booking attempts per player in a sliding window.
// Requests without a player id (availability reads, health checks) pass
// through unlimited.
type PlayerRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor PlayerExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewPlayerRateLimiter(limit int, window time.Duration, extractor PlayerExtractor, log *logger.Logger) *PlayerRateLimiter {
	limiter := &PlayerRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *PlayerRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for player, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, player)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PlayerRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *PlayerRateLimiter) Allow(player string) bool {
	if player == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := make([]time.Time, 0)
	for _, ts := range rl.requests[player] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[player] = valid
		return false
	}

	rl.requests[player] = append(valid, now)
	return true
}

func PlayerRateLimit(limiter *PlayerRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player := extractPlayerID(r, limiter.extractor)

			if player == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(player) {
				rejectRateLimited(w, limiter.log, r, player)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractPlayerID(r *http.Request, extractor PlayerExtractor) string {
	if extractor == nil {
		return r.Header.Get("X-Player-ID")
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, player string) {
	log.Warn("Rate limit exceeded",
		"request_id", requestIDFromContext(r),
		"player_id", player,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultPlayerExtractor(r *http.Request) string {
	return r.Header.Get("X-Player-ID")
}
