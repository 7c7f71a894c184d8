package middleware

import (
	"net/http"
	"sync"

	"flexileave/internal/shared/apperror"
	"flexileave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type KeyRateLimiter struct {
	keys map[string]*rate.Limiter
	mu   *sync.Mutex
	r    rate.Limit // requests per second
	b    int        // burst
}

func NewKeyRateLimiter(r rate.Limit, b int) *KeyRateLimiter {
	return &KeyRateLimiter{
		keys: make(map[string]*rate.Limiter),
		mu:   &sync.Mutex{},
		r:    r,
		b:    b,
	}
}

func (i *KeyRateLimiter) GetLimiter(key string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.keys[key]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.keys[key] = limiter
	}

	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			response.Error(c, http.StatusTooManyRequests, apperror.CodeRateLimited, "Too many requests from this IP", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimitByUser: r = requests per second, b = burst. Anonymous requests pass through.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyRateLimiter(r, b)
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}
		if !limiter.GetLimiter(userID).Allow() {
			response.Error(c, http.StatusTooManyRequests, apperror.CodeRateLimited, "Too many requests from this user", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
