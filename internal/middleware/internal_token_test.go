package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newInternalRouter(expected string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(InternalTokenAuth(expected, zap.NewNop()))
	router.POST("/internal", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestInternalTokenAuth(t *testing.T) {
	router := newInternalRouter("s3cret")

	tests := []struct {
		name   string
		header string
		value  string
		code   int
	}{
		{"header token", "X-Internal-Token", "s3cret", http.StatusOK},
		{"bearer token", "Authorization", "Bearer s3cret", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong token", "X-Internal-Token", "nope", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/internal", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestInternalTokenAuth_NotConfigured(t *testing.T) {
	router := newInternalRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal", nil)
	req.Header.Set("X-Internal-Token", "anything")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
