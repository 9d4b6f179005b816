package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// UploadLimiter throttles uploads per user so a single account cannot flood
// the moderation queue. Limiters are created lazily and kept for the life of
// the process.
type UploadLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewUploadLimiter(perMinute, burst int) *UploadLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &UploadLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

func (u *UploadLimiter) limiterFor(userID string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()
	l, ok := u.limiters[userID]
	if !ok {
		l = rate.NewLimiter(u.limit, u.burst)
		u.limiters[userID] = l
	}
	return l
}

// Middleware rejects the request with 429 once the user's budget is spent.
// Runs after AuthMiddleware, which sets userID.
func (u *UploadLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		if !u.limiterFor(userID).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "upload rate limit exceeded, try again later"})
			c.Abort()
			return
		}

		c.Next()
	}
}
