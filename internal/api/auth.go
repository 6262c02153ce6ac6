package api

import (
	"net/http" // HTTP status codes
	"time"     // Cookie lifetimes

	"finance_tracker/internal/domain"     // Importing domain models
	"finance_tracker/internal/middleware" // Request session
	"finance_tracker/internal/service"    // Auth service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RefreshCookie carries the refresh token
const RefreshCookie = "refreshToken"

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`     // Login email
	Password  string `json:"password" binding:"required"`  // Plaintext password, checked against the password policy
	FirstName string `json:"firstName" binding:"required"` // Given name
	LastName  string `json:"lastName" binding:"required"`  // Family name
	Currency  string `json:"currency"`                     // Display currency, USD when empty
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Currency  string `json:"currency"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string       `json:"token"` // Access token
	User  UserResponse `json:"user"`
}

// SessionResponse describes one active login
type SessionResponse struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"userAgent"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CookieConfig controls the refresh token cookie
type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Currency: u.Currency}
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}

func setRefreshCookie(c *gin.Context, cfg CookieConfig, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookie, token, int(cfg.MaxAge.Seconds()), "/api/auth", cfg.Domain, cfg.Secure, true)
}

func clearRefreshCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookie, "", -1, "/api/auth", cfg.Domain, cfg.Secure, true)
}

// RegisterHandler creates a user and signs them in
func RegisterHandler(auth *service.AuthService, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			respondError(c, domain.InvalidInput("Invalid request"))
			return
		}
		res, err := auth.Register(c.Request.Context(), service.RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Currency:  req.Currency,
		}, clientInfo(c))
		if err != nil {
			respondError(c, err) // Conflict on duplicate email, InvalidInput on policy failures
			return
		}
		setRefreshCookie(c, cookies, res.RefreshToken)
		c.JSON(http.StatusCreated, AuthResponse{Token: res.AccessToken, User: newUserResponse(res.User)})
	}
}

// LoginHandler authenticates a user and returns an access token
func LoginHandler(auth *service.AuthService, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.InvalidInput("Invalid request"))
			return
		}
		res, err := auth.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
		if err != nil {
			respondError(c, err)
			return
		}
		setRefreshCookie(c, cookies, res.RefreshToken)
		c.JSON(http.StatusOK, AuthResponse{Token: res.AccessToken, User: newUserResponse(res.User)})
	}
}

// RefreshHandler rotates the refresh cookie and returns a new access token
func RefreshHandler(auth *service.AuthService, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(RefreshCookie) // Missing cookie is rejected by the service
		res, err := auth.Refresh(c.Request.Context(), token, clientInfo(c))
		if err != nil {
			clearRefreshCookie(c, cookies)
			respondError(c, err)
			return
		}
		setRefreshCookie(c, cookies, res.RefreshToken)
		c.JSON(http.StatusOK, gin.H{"token": res.AccessToken})
	}
}

// LogoutHandler revokes the session behind the refresh cookie
func LogoutHandler(auth *service.AuthService, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(RefreshCookie)
		if err := auth.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
		clearRefreshCookie(c, cookies)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// SessionsHandler lists the caller's active logins
func SessionsHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := auth.Sessions(c.Request.Context(), middleware.Session(c))
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]SessionResponse, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, SessionResponse{ID: s.ID, UserAgent: s.UserAgent, IP: s.IP, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt})
		}
		c.JSON(http.StatusOK, gin.H{"sessions": out})
	}
}
