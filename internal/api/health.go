package api

import (
	"context"
	"net/http"
	"time"

	"finance_tracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness, uptime and database reachability
func HealthHandler(db Pinger, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code, database := "ok", http.StatusOK, "up"
		if err := db.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("Health check: database unreachable")
			status, code, database = "degraded", http.StatusServiceUnavailable, "down"
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(started).Seconds(),
			"database":  database,
		})
	}
}

// CSRFTokenHandler issues a CSRF token and its secret cookie
func CSRFTokenHandler(x *middleware.CSRF) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := x.Issue(c)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"csrfToken": token})
	}
}
