package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"renovirt-backend/internal/models"
	"renovirt-backend/internal/ratelimit"
)

// Limiter is the keyed token bucket store the rate limit middleware draws
// from.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests over the per-client budget with 429. Signed-in
// users are keyed by user id, anonymous ones by a session fingerprint.
func RateLimit(limiter Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(UserIDKey)
		if key == "" {
			key = "anon:" + ratelimit.Fingerprint(c.ClientIP(), c.Request.UserAgent())
		}

		if !limiter.Allow(scope + ":" + key) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate limit exceeded",
				Message: "too many requests, please slow down",
			})
			return
		}
		c.Next()
	}
}
