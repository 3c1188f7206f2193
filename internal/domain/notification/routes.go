package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the list endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	notifGroup := protected.Group("/notifications")
	{
		notifGroup.GET("", h.GetNotifications)
		notifGroup.PATCH("/:id/read", h.MarkAsRead)
		notifGroup.POST("/read-all", h.MarkAllAsRead)
	}
}

// RegisterWSRoutes mounts the websocket endpoint, which authenticates
// through its query string.
func (h *Handler) RegisterWSRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/notifications", h.HandleWebSocket)
}
