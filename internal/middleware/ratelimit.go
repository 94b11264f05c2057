package middleware

import (
	"net/http" // HTTP status codes
	"sync"     // Mutex for the limiter map

	"github.com/gin-gonic/gin" // Gin web framework
	"golang.org/x/time/rate"   // Token bucket rate limiter
)

// keyedLimiter manages per-key token buckets. Each unique key gets its own
// independent rate limiter.
type keyedLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// getLimiter returns the limiter for a key, creating one if needed
func (kl *keyedLimiter) getLimiter(key string) *rate.Limiter {
	// Fast path: read lock
	kl.mu.RLock()
	limiter, exists := kl.limiters[key]
	kl.mu.RUnlock()
	if exists {
		return limiter
	}
	// Slow path: write lock to create
	kl.mu.Lock()
	defer kl.mu.Unlock()
	// Double-check after acquiring write lock
	if limiter, exists = kl.limiters[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(kl.limit, kl.burst)
	kl.limiters[key] = limiter
	return limiter
}

// RateLimitMiddleware limits requests per client IP using a token bucket.
// Applied to the public auth endpoints to slow credential stuffing.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	kl := &keyedLimiter{
		limiters: make(map[string]*rate.Limiter), // Per-IP limiters
		limit:    rate.Limit(rps),                // Requests per second
		burst:    burst,                          // Burst size
	}
	return func(c *gin.Context) {
		// Check the bucket for this client IP
		if !kl.getLimiter(c.ClientIP()).Allow() {
			// If exhausted, abort with too many requests
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next() // Proceed to the next handler
	}
}
