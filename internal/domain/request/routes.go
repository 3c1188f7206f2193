package request

import (
	"github.com/gin-gonic/gin"

	"stylistbook/internal/middleware"
)

// RegisterRoutes mounts the lifecycle endpoints on an authenticated group.
// write is applied to the mutating routes only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	requests := rg.Group("/booking-requests")
	{
		requests.GET("/mine", middleware.RequireRole(middleware.RoleClient, middleware.RoleStylist), h.ListMine)
		requests.GET("/:id", h.GetByID)
	}

	mutating := requests.Group("", write...)
	{
		mutating.POST("", middleware.RequireRole(middleware.RoleClient), h.Create)
		mutating.POST("/:id/respond", middleware.RequireRole(middleware.RoleStylist), h.Respond)
		mutating.POST("/:id/confirm", middleware.RequireRole(middleware.RoleClient), h.Confirm)
		mutating.POST("/:id/cancel", middleware.RequireRole(middleware.RoleClient), h.Cancel)
	}
}

// RegisterInternalRoutes mounts the administrative trigger. The group must be
// protected by the internal token middleware.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.POST("/booking-requests/expire-old", h.ExpireOld)
}
