package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL     = 5 * time.Minute
	limiterCleanupTick = time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP and forgets clients
// that have been idle for a while.
type RateLimiter struct {
	rps        int
	burst      int
	trustProxy bool

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter allowing rps requests per second per IP.
// A non-positive rps disables limiting. With trustProxy the client is taken
// from X-Forwarded-For; only enable it behind a proxy that sets the header.
// Call Close to stop the cleanup loop.
func NewRateLimiter(rps, burst int, trustProxy bool) *RateLimiter {
	if burst < 1 {
		burst = max(rps, 1)
	}
	rl := &RateLimiter{
		rps:        rps,
		burst:      burst,
		trustProxy: trustProxy,
		limiters:   make(map[string]*ipLimiter),
		stop:       make(chan struct{}),
	}
	if rps > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Enabled reports whether requests are being limited.
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.rps > 0
}

// Allow consumes a token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.Enabled() {
		return true
	}
	return rl.limiterFor(ip).Allow()
}

// Middleware rejects requests over the limit by calling reject.
func (rl *RateLimiter) Middleware(reject func(w http.ResponseWriter, r *http.Request, clientIP string), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		ip := ClientIP(r, rl.trustProxy)
		if !rl.Allow(ip) {
			reject(w, r, ip)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Close stops the cleanup loop. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	if rl == nil {
		return
	}
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = time.Now()
	return l.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, l := range rl.limiters {
				if time.Since(l.lastSeen) > limiterIdleTTL {
					delete(rl.limiters, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// ClientIP returns the remote address without the port. When trustProxy is
// set, the first X-Forwarded-For entry takes precedence.
func ClientIP(r *http.Request, trustProxy bool) string {
	ip := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); trustProxy && forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			ip = first
		}
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}
