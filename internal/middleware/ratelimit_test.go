package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowLimiterAllow(t *testing.T) {
	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	now := base
	l := NewWindowLimiter(time.Minute, nil)
	l.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("auth:1.2.3.4", 5), "request %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("auth:1.2.3.4", 5), "sixth request should be rejected")

	// other buckets are unaffected
	assert.True(t, l.Allow("auth:5.6.7.8", 5))
	assert.True(t, l.Allow("send:1.2.3.4", 5))

	// rejected requests do not extend the penalty
	now = base.Add(30 * time.Second)
	assert.False(t, l.Allow("auth:1.2.3.4", 5))

	// original requests age out after the window
	now = base.Add(61 * time.Second)
	assert.True(t, l.Allow("auth:1.2.3.4", 5))
}

func TestWindowLimiterCleanup(t *testing.T) {
	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	now := base
	l := NewWindowLimiter(time.Minute, nil)
	l.now = func() time.Time { return now }

	l.Allow("auth:1.2.3.4", 5)
	l.Allow("auth:5.6.7.8", 5)

	now = base.Add(2 * time.Minute)
	l.cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.requests)
}

func TestLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := NewWindowLimiter(time.Minute, nil)
	r := gin.New()
	r.GET("/ping", l.Limit("auth", 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(ip string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if ip != "" {
			req.Header.Set("X-Forwarded-For", ip)
		}
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, do("1.2.3.4").Code)

	rejected := do("1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "60", rejected.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rejected.Body.String())

	// a different caller has its own bucket
	assert.Equal(t, http.StatusOK, do("9.9.9.9").Code)
}

func TestCallerIdentifier(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(headers map[string]string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			c.Request.Header.Set(k, v)
		}
		return c
	}

	assert.Equal(t, "1.2.3.4", callerIdentifier(newCtx(map[string]string{
		"X-Forwarded-For": "1.2.3.4, 5.6.7.8",
	})))
	assert.Equal(t, "5.6.7.8", callerIdentifier(newCtx(map[string]string{
		"X-Real-IP": "5.6.7.8",
	})))
	assert.Equal(t, "1.2.3.4", callerIdentifier(newCtx(map[string]string{
		"X-Forwarded-For": "1.2.3.4",
		"X-Real-IP":       "5.6.7.8",
	})))
	assert.Equal(t, "unknown", callerIdentifier(newCtx(nil)))
}
