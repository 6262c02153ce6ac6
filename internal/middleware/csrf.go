package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"finance_tracker/internal/domain"

	"github.com/gin-gonic/gin"
)

// CSRFCookie holds the per-client secret the token is derived from
const CSRFCookie = "_csrf"

// CSRF implements double-submit tokens: the client keeps a random secret in an
// HttpOnly cookie and echoes HMAC(key, secret) in a header on every
// state-changing request.
type CSRF struct {
	key     []byte
	enabled bool
	secure  bool
	domain  string
}

// NewCSRF returns a CSRF guard keyed with key
func NewCSRF(key string, enabled, secure bool, domain string) *CSRF {
	return &CSRF{key: []byte(key), enabled: enabled, secure: secure, domain: domain}
}

func (x *CSRF) token(secret string) string {
	mac := hmac.New(sha256.New, x.key)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue sets a fresh secret cookie and returns the matching token
func (x *CSRF) Issue(c *gin.Context) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	secret := hex.EncodeToString(b)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CSRFCookie, secret, 0, "/", x.domain, x.secure, true)
	return x.token(secret), nil
}

// Protect rejects POST, PUT, PATCH and DELETE requests without a valid token
func (x *CSRF) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if !x.enabled {
			c.Next()
			return
		}
		secret, err := c.Cookie(CSRFCookie)
		if err != nil || secret == "" {
			abort(c, domain.CSRFRejected("missing CSRF cookie"))
			return
		}
		sent := c.GetHeader("X-CSRF-Token")
		if sent == "" {
			sent = c.GetHeader("CSRF-Token")
		}
		if !hmac.Equal([]byte(sent), []byte(x.token(secret))) {
			abort(c, domain.CSRFRejected("invalid CSRF token"))
			return
		}
		c.Next()
	}
}
