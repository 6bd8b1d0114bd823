package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/theoprice/pkg/logger"
	"github.com/wyfcoding/theoprice/pkg/ratelimit"
	"github.com/wyfcoding/theoprice/pkg/response"
)

// RateLimitMiddleware 按客户端 IP 限流，限流器故障时放行
func RateLimitMiddleware(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), scope, c.ClientIP())
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}

		if d.Burst > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(d.Burst))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		}
		if !d.Allowed {
			retryAfter := d.RetryAfterSeconds()
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.ErrorWithStatus(c, http.StatusTooManyRequests, "too many requests",
				"retry after "+strconv.FormatInt(retryAfter, 10)+"s")
			c.Abort()
			return
		}
		c.Next()
	}
}
