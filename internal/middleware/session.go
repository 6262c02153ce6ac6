package middleware

import (
	"strings" // String manipulation

	"finance_tracker/internal/domain" // Error taxonomy
	"finance_tracker/internal/policy" // Request sessions

	"github.com/gin-gonic/gin" // Gin web framework
)

// TokenVerifier turns a bearer token into a session
type TokenVerifier interface {
	VerifyAccessToken(token string) policy.Session
}

// SessionMiddleware decodes the bearer access token into the request session.
// A missing or invalid token leaves the request anonymous; each operation
// decides whether that is acceptable.
func SessionMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess policy.Session
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		if strings.HasPrefix(authHeader, "Bearer ") {
			sess = verifier.VerifyAccessToken(strings.TrimPrefix(authHeader, "Bearer ")) // Parse the JWT token
		}
		c.Request = c.Request.WithContext(policy.WithSession(c.Request.Context(), sess)) // Visible to resolvers
		if sess.Authenticated() {
			c.Set("userID", sess.UserID) // Store userID in context
		}
		c.Next() // Proceed to the next handler
	}
}

// RequireSession aborts anonymous requests with 401
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("userID"); !exists {
			abort(c, domain.Unauthenticated("Missing or invalid Authorization header"))
			return
		}
		c.Next()
	}
}

// Session returns the session SessionMiddleware stored on c
func Session(c *gin.Context) policy.Session {
	return policy.FromContext(c.Request.Context())
}

// abort stops the chain with the error body every handler uses
func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(domain.HTTPStatus(err), gin.H{"error": err.Error(), "code": domain.CodeOf(err)})
}
