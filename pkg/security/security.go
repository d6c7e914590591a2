package security

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORS only reflects origins from the allow-list, with credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && originSet[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitors struct {
	mu    sync.Mutex
	byKey map[string]*visitor
	every rate.Limit
	burst int
}

func (v *visitors) get(key string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	vis, ok := v.byKey[key]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.every, v.burst)}
		v.byKey[key] = vis
	}
	vis.lastSeen = time.Now()
	return vis.limiter
}

func (v *visitors) evictIdle(maxIdle time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for key, vis := range v.byKey {
		if time.Since(vis.lastSeen) > maxIdle {
			delete(v.byKey, key)
		}
	}
}

// RateLimiter is a per-client-IP token bucket allowing maxRequests per
// window. Idle clients are forgotten after three windows, or a minute if
// that is longer.
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	v := &visitors{
		byKey: make(map[string]*visitor),
		every: rate.Every(window / time.Duration(maxRequests)),
		burst: maxRequests,
	}
	maxIdle := 3 * window
	if maxIdle < time.Minute {
		maxIdle = time.Minute
	}
	go func() {
		for range time.Tick(time.Minute) {
			v.evictIdle(maxIdle)
		}
	}()

	return func(c *gin.Context) {
		if !v.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": http.StatusTooManyRequests, "message": "too many requests"})
			return
		}
		c.Next()
	}
}
