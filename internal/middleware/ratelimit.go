package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Request costs. Generating a report renders the PDF, the workbook and
// every chart image synchronously, so writes drain a tenant's bucket
// faster than reads do.
const (
	costRead     = 1
	costUpload   = 3
	costGenerate = 5
)

type tokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     int
	refillRate int // tokens per second
	lastRefill time.Time
}

func newTokenBucket(capacity, refillRate int) *tokenBucket {
	return &tokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *tokenBucket) take(cost int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if add := int(elapsed * float64(tb.refillRate)); add > 0 {
		tb.tokens += add
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens >= cost {
		tb.tokens -= cost
		return true
	}
	return false
}

// TenantRateLimiter keeps one bucket per tenant. Traffic that has not
// been through auth yet is keyed by caller address instead.
type TenantRateLimiter struct {
	mu         sync.RWMutex
	buckets    map[string]*tokenBucket
	capacity   int
	refillRate int
}

func NewTenantRateLimiter(capacity, refillRate int) *TenantRateLimiter {
	rl := &TenantRateLimiter{
		buckets:    make(map[string]*tokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
	}

	// Drop buckets of tenants that went quiet
	go rl.cleanup()

	return rl
}

func (rl *TenantRateLimiter) bucket(key string) *tokenBucket {
	rl.mu.RLock()
	b, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if exists {
		return b
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if b, exists := rl.buckets[key]; exists {
		return b
	}

	b = newTokenBucket(rl.capacity, rl.refillRate)
	rl.buckets[key] = b
	return b
}

// Take charges cost tokens against the key's bucket.
func (rl *TenantRateLimiter) Take(key string, cost int) bool {
	return rl.bucket(key).take(cost)
}

func (rl *TenantRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			b.mu.Lock()
			if now.Sub(b.lastRefill) > 10*time.Minute {
				delete(rl.buckets, key)
			}
			b.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

// requestCost classifies a request by the work it triggers downstream.
func requestCost(r *http.Request) int {
	if r.Method != http.MethodPost {
		return costRead
	}
	if strings.HasSuffix(r.URL.Path, "/files") {
		return costUpload
	}
	return costGenerate
}

// RateLimitMiddleware creates a per-tenant weighted rate limiting middleware
// capacity: max tokens in a tenant's bucket
// refillRate: tokens added per second
func RateLimitMiddleware(capacity, refillRate int) func(http.Handler) http.Handler {
	limiter := NewTenantRateLimiter(capacity, refillRate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Probes are polled frequently and never rate limited
			if probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := GetTenantFromContext(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			if !limiter.Take(key, requestCost(r)) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
