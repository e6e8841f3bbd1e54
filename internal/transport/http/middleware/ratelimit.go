package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	resp "go-gin-blog/internal/transport/http/response"
)

// RateLimit is a global token bucket.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTooManyRequests, "too many requests"))
	}
}

// Per-IP buckets idle for perIPIdle are dropped; at most perIPClients are tracked, least
// recently seen first out.
const (
	perIPClients = 10000
	perIPIdle    = 10 * time.Minute
)

// RateLimitPerIP keeps one bucket per client IP.
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	return rateLimitPerIP(rps, burst, perIPClients, perIPIdle)
}

func rateLimitPerIP(rps rate.Limit, burst, clients int, idle time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := expirable.NewLRU[string, *rate.Limiter](clients, nil, idle)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		lim, ok := buckets.Get(ip)
		if !ok {
			lim = rate.NewLimiter(rps, burst)
		}
		// re-adding refreshes the idle deadline
		buckets.Add(ip, lim)
		mu.Unlock()
		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTooManyRequests, "too many requests"))
	}
}
