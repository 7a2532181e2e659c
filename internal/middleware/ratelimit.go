package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RemoteIP returns the address of the peer that opened the connection.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedIP returns the client address reported by a reverse proxy,
// preferring CF-Connecting-IP, then the first hop of X-Forwarded-For, then
// RemoteAddr. Those headers are client-controlled unless a proxy in front
// overwrites them.
func ForwardedIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return RemoteIP(r)
}

// ClientIP returns the rate limiter key function: ForwardedIP when a trusted
// proxy sits in front of the server, RemoteIP otherwise.
func ClientIP(trustProxy bool) func(*http.Request) string {
	if trustProxy {
		return ForwardedIP
	}
	return RemoteIP
}

type bucket struct {
	hits    int
	resetAt time.Time
}

// RateLimiter counts attempts per key in fixed windows. It guards the
// register and login endpoints against credential stuffing.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow records an attempt for key. When the key is over limit it returns
// false and the time left until its window resets.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		rl.buckets[key] = &bucket{hits: 1, resetAt: now.Add(window)}
		return true, 0
	}
	b.hits++
	if b.hits > limit {
		return false, b.resetAt.Sub(now)
	}
	return true, 0
}

// Cleanup drops keys whose window has passed and reports how many it dropped.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		if !now.Before(b.resetAt) {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// RateLimit rejects requests with 429 once keyFunc's key exceeds limit
// attempts within window.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.Allow(keyFunc(r), limit, window)
			if !ok {
				secs := int(math.Ceil(wait.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				writeError(w, http.StatusTooManyRequests, "Demasiados intentos, espera un momento")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
