package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) { c.Set("request_id", "req-1") }, h, func(c *gin.Context) {
		c.Header("X-Reached", "yes")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { Success(c, http.StatusCreated, gin.H{"id": 7}) })

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["data"].(map[string]any)["id"])
	assert.NotContains(t, body, "error")
}

func TestErrorWithDetails(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) {
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "bad", map[string]string{"notes": "max=2000"})
	})

	assert.Equal(t, false, body["success"])
	e := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", e["code"])
	assert.Equal(t, "req-1", e["request_id"])
	assert.Equal(t, "max=2000", e["details"].(map[string]any)["notes"])
}

func TestAbortStopsChain(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { Abort(c, http.StatusForbidden, "FORBIDDEN", "no") })

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("X-Reached"))
	assert.NotContains(t, body["error"].(map[string]any), "details")
}
