package api

import (
	"time" // CORS preflight cache

	"finance_tracker/internal/graph"      // GraphQL schema
	"finance_tracker/internal/middleware" // Custom middleware
	"finance_tracker/internal/ratelimit"  // Request limiters
	"finance_tracker/internal/service"    // Auth service

	"github.com/gin-contrib/cors" // CORS middleware
	"github.com/gin-gonic/gin"    // Gin web framework
)

// Deps is everything the router wires into handlers
type Deps struct {
	Auth           *service.AuthService
	Schema         *graph.Schema
	DB             Pinger
	GlobalLimiter  ratelimit.Limiter
	AuthLimiter    ratelimit.Limiter
	CSRF           *middleware.CSRF
	Cookies        CookieConfig
	CORSOrigins    []string
	TrustedProxies []string
	HSTS           bool
	Started        time.Time
}

// NewRouter builds the HTTP surface: GraphQL, the REST auth endpoints, health
// and CSRF token issuance
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.SecurityHeaders(d.HSTS))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-CSRF-Token", "CSRF-Token"},
			AllowCredentials: true, // Refresh and CSRF cookies
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.RateLimit(d.GlobalLimiter), middleware.SessionMiddleware(d.Auth))

	r.GET("/health", HealthHandler(d.DB, d.Started))   // Health endpoint
	r.GET("/api/csrf-token", CSRFTokenHandler(d.CSRF)) // CSRF token endpoint

	// GraphQL (CSRF protected, session from the bearer token)
	r.POST("/graphql", d.CSRF.Protect(), GraphQLHandler(d.Schema))

	// Auth routes (stricter rate limit, CSRF protected)
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.RateLimit(d.AuthLimiter), d.CSRF.Protect())
	authGroup.POST("/register", RegisterHandler(d.Auth, d.Cookies))     // Registration endpoint
	authGroup.POST("/login", LoginHandler(d.Auth, d.Cookies))           // Login endpoint
	authGroup.POST("/refresh-token", RefreshHandler(d.Auth, d.Cookies)) // Refresh endpoint
	authGroup.POST("/logout", LogoutHandler(d.Auth, d.Cookies))         // Logout endpoint
	authGroup.GET("/sessions", middleware.RequireSession(), SessionsHandler(d.Auth))

	return r, nil
}
