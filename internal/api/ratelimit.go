package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/RefFinder/internal/logging"
)

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// tokenBucket implements a token bucket rate limiter. Callers hold the
// limiter's lock.
type tokenBucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.last).Seconds()
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.last = now
}

// resetAt returns when the bucket will be full again.
func (tb *tokenBucket) resetAt(now time.Time) time.Time {
	if tb.tokens >= tb.capacity {
		return now
	}
	secs := (tb.capacity - tb.tokens) / tb.refillRate
	return now.Add(time.Duration(secs * float64(time.Second)))
}

// RateLimiter manages per-IP rate limiting.
type RateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*tokenBucket
	config      RateLimiterConfig
	idleTTL     time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

// NewRateLimiter creates a rate limiter. A burst below one allows one
// request at a time.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.BurstSize < 1 {
		config.BurstSize = 1
	}
	return &RateLimiter{
		buckets:     make(map[string]*tokenBucket),
		config:      config,
		idleTTL:     5 * time.Minute,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// take refills ip's bucket and tries to spend one token. It reports the
// tokens left and when the bucket will be full.
func (rl *RateLimiter) take(ip string) (ok bool, remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanupLocked(now)

	bucket, exists := rl.buckets[ip]
	if !exists {
		bucket = &tokenBucket{
			tokens:     float64(rl.config.BurstSize),
			capacity:   float64(rl.config.BurstSize),
			refillRate: float64(rl.config.RequestsPerMinute) / 60.0,
			last:       now,
		}
		rl.buckets[ip] = bucket
	}
	bucket.refill(now)
	if bucket.tokens >= 1.0 {
		bucket.tokens--
		ok = true
	}
	return ok, int(bucket.tokens), bucket.resetAt(now)
}

// cleanupLocked removes buckets idle for longer than the TTL, at most once
// a minute.
func (rl *RateLimiter) cleanupLocked(now time.Time) {
	if now.Sub(rl.lastCleanup) < time.Minute {
		return
	}
	rl.lastCleanup = now
	for ip, bucket := range rl.buckets {
		if now.Sub(bucket.last) > rl.idleTTL {
			delete(rl.buckets, ip)
		}
	}
}

// Allow checks if a request from the given IP should be allowed.
func (rl *RateLimiter) Allow(ip string) bool {
	ok, _, _ := rl.take(ip)
	return ok
}

// Middleware returns an HTTP middleware that applies rate limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r)
		ok, remaining, reset := rl.take(ip)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.RequestsPerMinute))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !ok {
			retryAfter := int(reset.Sub(rl.now()).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			logging.SecurityEvent("rate_limited", "api", "client_ip", ip, "path", r.URL.Path)
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Rate limit exceeded. Try again in "+strconv.Itoa(retryAfter)+" seconds.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP address from the request. The leftmost
// X-Forwarded-For entry wins, then X-Real-IP, then RemoteAddr; each must
// parse as an IP.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); isValidIP(ip) {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); isValidIP(ip) {
		return ip
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if isValidIP(ip) {
		return ip
	}
	return "unknown"
}

func isValidIP(s string) bool {
	return net.ParseIP(s) != nil
}
