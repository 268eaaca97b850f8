package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a per-IP token bucket limiter
type RateLimiter struct {
	config *RateLimitConfig

	buckets   map[string]*Bucket
	bucketsMu sync.RWMutex

	now           func() time.Time
	cleanupTicker *time.Ticker
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// BlockDuration is how long an IP stays blocked once it runs dry
	BlockDuration time.Duration

	CleanupInterval time.Duration
	BucketTTL       time.Duration
}

// DefaultRateLimitConfig returns default configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 50,
		Burst:             100,
		BlockDuration:     30 * time.Second,
		CleanupInterval:   5 * time.Minute,
		BucketTTL:         time.Hour,
	}
}

// Bucket is a token bucket for one client
type Bucket struct {
	mu           sync.Mutex
	tokens       float64
	lastUpdate   time.Time
	blockedUntil time.Time
}

// RateLimitInfo describes the outcome of a rate limit check
type RateLimitInfo struct {
	Allowed    bool `json:"allowed"`
	Remaining  int  `json:"remaining"`
	Limit      int  `json:"limit"`
	RetryAfter int  `json:"retry_after,omitempty"`
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	rl := &RateLimiter{
		config:        config,
		buckets:       make(map[string]*Bucket),
		now:           time.Now,
		cleanupTicker: time.NewTicker(config.CleanupInterval),
		stopCh:        make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop stops the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
		rl.cleanupTicker.Stop()
	})
}

func (rl *RateLimiter) cleanupLoop() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	threshold := rl.now().Add(-rl.config.BucketTTL)

	rl.bucketsMu.Lock()
	defer rl.bucketsMu.Unlock()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if b.lastUpdate.Before(threshold) {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

func (rl *RateLimiter) getBucket(key string) *Bucket {
	rl.bucketsMu.RLock()
	b, ok := rl.buckets[key]
	rl.bucketsMu.RUnlock()
	if ok {
		return b
	}

	rl.bucketsMu.Lock()
	defer rl.bucketsMu.Unlock()
	if b, ok := rl.buckets[key]; ok {
		return b
	}
	b = &Bucket{tokens: float64(rl.config.Burst), lastUpdate: rl.now()}
	rl.buckets[key] = b
	return b
}

// AllowIP consumes a token for ip
func (rl *RateLimiter) AllowIP(ip string) (bool, *RateLimitInfo) {
	b := rl.getBucket(ip)
	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()
	limit := rl.config.Burst
	if now.Before(b.blockedUntil) {
		return false, &RateLimitInfo{
			Limit:      limit,
			RetryAfter: int(b.blockedUntil.Sub(now).Seconds()) + 1,
		}
	}

	b.tokens += now.Sub(b.lastUpdate).Seconds() * float64(rl.config.RequestsPerSecond)
	if b.tokens > float64(limit) {
		b.tokens = float64(limit)
	}
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true, &RateLimitInfo{Allowed: true, Remaining: int(b.tokens), Limit: limit}
	}

	b.blockedUntil = now.Add(rl.config.BlockDuration)
	return false, &RateLimitInfo{
		Limit:      limit,
		RetryAfter: int(rl.config.BlockDuration.Seconds()) + 1,
	}
}

// Size returns the number of tracked clients
func (rl *RateLimiter) Size() int {
	rl.bucketsMu.RLock()
	defer rl.bucketsMu.RUnlock()
	return len(rl.buckets)
}

// RateLimitMiddleware rejects clients that exceed their bucket
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, info := rl.AllowIP(ClientIP(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(info.RetryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":       "rate_limit_exceeded",
					"retry_after": info.RetryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP, preferring proxy headers
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
