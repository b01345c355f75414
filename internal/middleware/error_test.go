package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

func errorRouter(exposeErrors bool, err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	zl := zerolog.Nop()
	r := gin.New()
	r.Use(ErrorHandler(exposeErrors, &zl))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
		c.Abort()
	})
	return r
}

func do(r *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return rec
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{apperrors.Validation("invalid request body", nil), http.StatusBadRequest, `{"error":"invalid request body"}`},
		{apperrors.InvalidCredentials(), http.StatusUnauthorized, `{"error":"invalid credentials"}`},
		{apperrors.AccountDeactivated(), http.StatusForbidden, `{"error":"account is deactivated"}`},
		{apperrors.NotFound("campaign"), http.StatusNotFound, `{"error":"campaign not found"}`},
		{apperrors.Conflict("no pending recipients"), http.StatusConflict, `{"error":"no pending recipients"}`},
		{apperrors.RateLimited(), http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`},
		{apperrors.Signature(errors.New("bad mac")), http.StatusBadRequest, `{"error":"invalid webhook signature"}`},
	}

	for _, tt := range tests {
		rec := do(errorRouter(false, tt.err))
		assert.Equal(t, tt.status, rec.Code)
		assert.JSONEq(t, tt.body, rec.Body.String())
	}
}

func TestErrorHandlerHidesDetailsByDefault(t *testing.T) {
	rec := do(errorRouter(false, apperrors.Internal(errors.New("pq: connection refused"))))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestErrorHandlerExposesDetailsWhenEnabled(t *testing.T) {
	rec := do(errorRouter(true, apperrors.Internal(errors.New("pq: connection refused"))))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestErrorHandlerWrapsPlainErrors(t *testing.T) {
	rec := do(errorRouter(false, errors.New("something unexpected")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
