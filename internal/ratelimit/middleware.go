package ratelimit

import (
	"math"
	"net/http"
	"site-functions/internal/observability"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware limits requests per client IP
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		ip := observability.GetRealClientIP(c)
		if ip == "unknown" {
			ip = c.ClientIP()
		}
		result := s.Check(ip)

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(float64(result.RetryAfterMs) / 1000))
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			ctx := observability.WithFields(c.Request.Context(), observability.Field{Key: "client_ip", Value: ip})
			s.logger.Warn(ctx, "rate limit exceeded")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"code":        "RATE_LIMIT_EXCEEDED",
				"limit":       result.Limit,
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
