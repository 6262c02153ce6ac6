package api

import (
	"finance_tracker/internal/domain" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError writes err as {"error", "code"}. Errors outside the taxonomy
// are logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	if !domain.IsPublic(err) {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		err = domain.Internal()
	}
	c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error(), "code": domain.CodeOf(err)})
}
