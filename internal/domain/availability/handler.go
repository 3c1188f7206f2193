package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stylistbook/internal/middleware"
	"stylistbook/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type SetStatusBody struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ws := rg.Group("/work-status", middleware.RequireRole(middleware.RoleStylist))
	{
		ws.GET("/me", h.GetMine)
		ws.PUT("/me", h.SetMine)
	}
}

func (h *Handler) GetMine(c *gin.Context) {
	ws, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch work status")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": ws})
}

func (h *Handler) SetMine(c *gin.Context) {
	var body SetStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status is required")
		return
	}
	status, err := ParseWorkStatus(body.Status)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	ws, err := h.service.Set(c.Request.Context(), c.GetInt64("user_id"), status)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update work status")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Work status updated to " + string(ws.Status),
		"status":  ws,
	})
}
