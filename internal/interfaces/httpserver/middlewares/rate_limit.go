package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/janhq/git-automation-server/internal/infrastructure/metrics"
)

const maxTrackedClients = 4096

// RateLimiter hands out one token bucket per client IP. The least recently
// seen clients are forgotten once maxTrackedClients is reached.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows requestsPerMinute per client with a burst of the same size.
func NewRateLimiter(requestsPerMinute int) (*RateLimiter, error) {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	cache, err := lru.New(maxTrackedClients)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		limiters: cache,
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    requestsPerMinute,
	}, nil
}

// Allow consumes a token for key.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	var limiter *rate.Limiter
	if cached, ok := l.limiters.Get(key); ok {
		limiter = cached.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(key, limiter)
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// Middleware rejects clients that ran out of tokens with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(1/float64(l.limit)) + 1)
	return func(c *gin.Context) {
		if !l.Allow(rateKey(c)) {
			metrics.RecordRateLimited()
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
			return
		}
		c.Next()
	}
}

func rateKey(c *gin.Context) string {
	ip := clientIP(c.ClientIP())
	if ip != "" {
		return "ip:" + ip
	}
	return "anonymous"
}

// Normalize IPv6-mapped IPv4 etc.
func clientIP(raw string) string {
	if raw == "" {
		return ""
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
