package security

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	allowHeaders = "Content-Type, Authorization, Accept, Origin, X-Request-ID"
	allowMethods = "GET, POST, DELETE, OPTIONS"
)

// CORS echoes origins found in allowedOrigins; a "*" entry allows any origin
// without credentials. Preflight requests end here with 204.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	wildcard := false
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			wildcard = true
			continue
		}
		originSet[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && originSet[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Allow-Methods", allowMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Secure sets the usual hardening headers on every response.
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		if c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter is a token bucket per client IP. Buckets idle for three windows
// are dropped by a janitor goroutine that lives until ctx is done.
type IPLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	every   rate.Limit
	burst   int
	idle    time.Duration
}

func NewIPLimiter(ctx context.Context, maxRequests int, window time.Duration) *IPLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	l := &IPLimiter{
		clients: make(map[string]*client),
		every:   rate.Every(window / time.Duration(maxRequests)),
		burst:   maxRequests,
		idle:    3 * window,
	}
	if l.idle < time.Minute {
		l.idle = time.Minute
	}
	go l.janitor(ctx)
	return l
}

func (l *IPLimiter) janitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip, cl := range l.clients {
				if now.Sub(cl.lastSeen) > l.idle {
					delete(l.clients, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Allow takes one token from the bucket of key.
func (l *IPLimiter) Allow(key string) bool {
	l.mu.Lock()
	cl, ok := l.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	l.mu.Unlock()

	return cl.limiter.Allow()
}

// Middleware rejects requests over the limit with 429.
func (l *IPLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
