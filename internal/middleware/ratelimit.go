package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimitMiddleware limits requests per client IP over a sliding window
type RateLimitMiddleware struct {
	requests  map[string][]time.Time
	mu        sync.Mutex
	now       func() time.Time
	lastSweep time.Time

	// trustProxy makes X-Forwarded-For and X-Real-IP name the client. Only
	// set it when a proxy in front of the server overwrites those headers.
	trustProxy bool
}

// NewRateLimitMiddleware creates a new rate limiting middleware. Clients are
// keyed by the connection's remote address unless trustProxy is set.
func NewRateLimitMiddleware(trustProxy bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests:   make(map[string][]time.Time),
		now:        time.Now,
		trustProxy: trustProxy,
	}
}

// RateLimit allows maxRequests per client within window
func (m *RateLimitMiddleware) RateLimit(maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.allow(m.clientIP(r), maxRequests, window) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimitMiddleware) allow(client string, maxRequests int, window time.Duration) bool {
	now := m.now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= window {
		m.sweep(windowStart)
		m.lastSweep = now
	}

	recent := m.requests[client][:0]
	for _, ts := range m.requests[client] {
		if ts.After(windowStart) {
			recent = append(recent, ts)
		}
	}
	if len(recent) >= maxRequests {
		m.requests[client] = recent
		return false
	}
	m.requests[client] = append(recent, now)
	return true
}

// sweep drops clients with no request after windowStart. Timestamps are
// appended in order, so the newest is last.
func (m *RateLimitMiddleware) sweep(windowStart time.Time) {
	for client, stamps := range m.requests {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(windowStart) {
			delete(m.requests, client)
		}
	}
}

// tracked returns how many clients currently hold window state.
func (m *RateLimitMiddleware) tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *RateLimitMiddleware) clientIP(r *http.Request) string {
	if m.trustProxy {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}
	return remoteIP(r)
}

func forwardedIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
