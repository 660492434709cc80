package server

import (
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	rateLimitWindow = time.Minute
	rateLimitBurst  = 30
)

// rateLimiter tracks request timestamps per client and action over a
// sliding window.
type rateLimiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{history: make(map[string][]time.Time)}
}

func (l *rateLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := now.Add(-rateLimitWindow)
	recent := l.history[key][:0]
	for _, stamp := range l.history[key] {
		if stamp.After(cutoff) {
			recent = append(recent, stamp)
		}
	}
	if len(recent) >= rateLimitBurst {
		l.history[key] = recent
		return false
	}
	l.history[key] = append(recent, now)
	return true
}

func (s *Server) enforceRateLimit(w http.ResponseWriter, r *http.Request, action string) bool {
	if s.limiter == nil {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if s.limiter.Allow(host+"|"+action, time.Now()) {
		return true
	}
	writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
	return false
}
