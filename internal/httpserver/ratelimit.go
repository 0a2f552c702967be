package httpserver

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/config"
	"golang.org/x/time/rate"
)

// evictEvery — как часто (в запросах) вычищаются простаивающие клиенты
const evictEvery = 1000

type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	seen     int
}

func newClientLimiters(rps, burst int) *clientLimiters {
	return &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (c *clientLimiters) allow(key string) bool {
	c.mu.Lock()
	l, ok := c.limiters[key]
	if !ok {
		l = rate.NewLimiter(c.rps, c.burst)
		c.limiters[key] = l
	}
	c.seen++
	if c.seen%evictEvery == 0 {
		c.evictIdle()
	}
	c.mu.Unlock()

	return l.Allow()
}

// evictIdle drops clients whose bucket has refilled completely.
func (c *clientLimiters) evictIdle() {
	for key, l := range c.limiters {
		if l.Tokens() >= float64(c.burst) {
			delete(c.limiters, key)
		}
	}
}

// RateLimitMiddleware enforces a per-client token bucket.
// RATE_LIMIT_RPS <= 0 disables it.
func RateLimitMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	if cfg.RateLimitRPS <= 0 {
		return next
	}

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = cfg.RateLimitRPS
	}
	clients := newClientLimiters(cfg.RateLimitRPS, burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !clients.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			apperr.Write(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
