package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubVerifier struct {
	tokens map[string]string
}

func (v stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := v.tokens[idToken]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &auth.Token{UID: uid, Claims: map[string]interface{}{"admin": uid == "root"}}, nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString(ContextUserID), "admin": c.GetBool(ContextAdmin)})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(stubVerifier{tokens: map[string]string{"good": "alice", "root": "root"}}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer  ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"uid":"alice","admin":false}`, rec.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer root")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"uid":"root","admin":true}`, rec.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter(RequestIDMiddleware())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "fixed")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "fixed", rec.Header().Get("X-Request-ID"))
}

func TestLoggingAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()
	r := newRouter(RequestIDMiddleware(), RequestLoggingMiddleware(logger), RecoveryMiddleware(logger))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	completed := logs.FilterMessage("request completed with server error").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "/panic", completed[0].ContextMap()["path"])
}
