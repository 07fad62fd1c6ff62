package server

import (
	"net/http"
	"strconv"

	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware rejects requests once the client's token bucket is
// drained. Limiter failures fail open so redis outages never block billing.
func RateLimitMiddleware(limiter *ratelimit.APILimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "rate_limited", "message": "too many requests"},
			})
			return
		}
		c.Next()
	}
}
