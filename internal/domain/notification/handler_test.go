package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stylistbook/internal/database/dbtest"
	"stylistbook/internal/pkg/jwt"
)

func TestHandler_GetNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := NewRepository(dbtest.Open(t, Models()...))
	require.NoError(t, repo.Create(context.Background(), &Notification{
		UserID: 3, Type: TypeBookingConfirmed, Title: "Booking Confirmed", CreatedAt: time.Now().UTC(),
	}))

	h := NewHandler(repo, NewHub(zap.NewNop()), jwt.New("secret", time.Hour), nil, zap.NewNop())
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) { c.Set("user_id", int64(3)) })
	h.RegisterRoutes(api)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                     `json:"success"`
		Data    NotificationListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data.Notifications, 1)
	assert.Equal(t, int64(1), body.Data.UnreadCount)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/notifications/999/read", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
