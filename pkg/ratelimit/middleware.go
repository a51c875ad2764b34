package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"showtix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware enforces the per-tier request budget before handlers run
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		// Determine rate limit type from route
		limitType := getRateLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// Fail open: a broken limiter must not take checkout down
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(path string) RateLimitType {
	switch {
	case strings.Contains(path, "/checkout"):
		return RateLimitTypeCheckout
	case strings.Contains(path, "/payments/webhook"):
		return RateLimitTypeWebhook
	case strings.Contains(path, "/jobs"):
		return RateLimitTypeAdmin
	case strings.Contains(path, "/shows"), strings.Contains(path, "/performances"):
		return RateLimitTypePublic
	default:
		return RateLimitTypeDefault
	}
}
