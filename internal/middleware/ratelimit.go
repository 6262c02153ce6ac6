package middleware

import (
	"finance_tracker/internal/domain"
	"finance_tracker/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit rejects clients that exceed l with 429. A failing limiter lets
// the request through.
func RateLimit(l ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logrus.WithError(err).Warn("Rate limiter unavailable")
		}
		if !allowed {
			abort(c, domain.RateLimited("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
