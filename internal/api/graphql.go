package api

import (
	"net/http"

	"finance_tracker/internal/graph"

	"github.com/gin-gonic/gin"
)

// GraphQLHandler executes a GraphQL request with the caller's session.
// Resolver failures are reported in the errors array with status 200.
func GraphQLHandler(schema *graph.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req graph.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{
				"message":    "request body must be a JSON object with a query",
				"extensions": gin.H{"code": "INVALID_INPUT"},
			}}})
			return
		}
		c.JSON(http.StatusOK, schema.Execute(c.Request.Context(), req))
	}
}
