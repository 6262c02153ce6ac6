package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance_tracker/internal/policy"
	"finance_tracker/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier map[string]policy.Session

func (f fakeVerifier) VerifyAccessToken(token string) policy.Session { return f[token] }

func sessionRouter() *gin.Engine {
	r := gin.New()
	r.Use(SessionMiddleware(fakeVerifier{"good": {UserID: "u1", Email: "a@example.com"}}))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": Session(c).UserID})
	})
	r.GET("/private", RequireSession(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestSessionMiddleware(t *testing.T) {
	r := sessionRouter()
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid bearer", "Bearer good", `{"user":"u1"}`},
		{"invalid token stays anonymous", "Bearer bad", `{"user":""}`},
		{"missing header", "", `{"user":""}`},
		{"wrong scheme", "Basic good", `{"user":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestRequireSession(t *testing.T) {
	r := sessionRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHENTICATED"`)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func csrfRouter(x *CSRF) *gin.Engine {
	r := gin.New()
	r.GET("/token", func(c *gin.Context) {
		token, err := x.Issue(c)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"csrfToken": token})
	})
	r.Use(x.Protect())
	r.POST("/mutate", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/read", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func issueCSRF(t *testing.T, r *gin.Engine) (*http.Cookie, string) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return cookies[0], body.CSRFToken
}

func TestCSRF(t *testing.T) {
	r := csrfRouter(NewCSRF("key", true, false, ""))
	cookie, token := issueCSRF(t, r)

	post := func(cookie *http.Cookie, header, token string) int {
		req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		if header != "" {
			req.Header.Set(header, token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, post(cookie, "X-CSRF-Token", token))
	assert.Equal(t, http.StatusNoContent, post(cookie, "CSRF-Token", token))
	assert.Equal(t, http.StatusForbidden, post(cookie, "X-CSRF-Token", "forged"))
	assert.Equal(t, http.StatusForbidden, post(cookie, "", ""))
	assert.Equal(t, http.StatusForbidden, post(nil, "X-CSRF-Token", token))

	other := &http.Cookie{Name: CSRFCookie, Value: "another-secret"}
	assert.Equal(t, http.StatusForbidden, post(other, "X-CSRF-Token", token))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/read", nil))
	assert.Equal(t, http.StatusNoContent, w.Code, "safe methods pass")
}

func TestCSRFDisabled(t *testing.T) {
	r := csrfRouter(NewCSRF("key", false, false, ""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mutate", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return true, assert.AnError
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	r = gin.New()
	r.Use(RateLimit(failingLimiter{}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code, "limiter errors fail open")
}

func TestSecurityHeadersAndLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), SecurityHeaders(true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}
