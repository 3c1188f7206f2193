package request

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stylistbook/internal/middleware"
	"stylistbook/internal/pkg/response"
	"stylistbook/internal/pkg/validator"
)

type Handler struct {
	service *Service
	sweeper *Sweeper
}

func NewHandler(service *Service, sweeper *Sweeper) *Handler {
	return &Handler{service: service, sweeper: sweeper}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing required fields", validator.Fields(err))
		return
	}

	r, err := h.service.CreateRequest(c.Request.Context(), CreateInput{
		ClientID:        c.GetInt64("user_id"),
		ProviderID:      body.StylistID,
		ServiceID:       body.ServiceID,
		RequestedDate:   body.RequestedDate,
		RequestedTime:   body.RequestedTime,
		DurationMinutes: body.DurationMinutes,
		TotalPrice:      body.TotalPrice,
		Notes:           body.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":         "Booking request created",
		"booking_request": ResponseFromEntity(r),
	})
}

func (h *Handler) ListMine(c *gin.Context) {
	filter := ListFilter{PartyID: c.GetInt64("user_id")}
	switch c.GetString("role") {
	case middleware.RoleClient:
		filter.Role = RoleClient
	case middleware.RoleStylist:
		filter.Role = RoleProvider
	default:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "only clients and stylists have booking requests")
		return
	}
	if s := c.Query("status"); s != "" {
		st, err := ParseStatus(s)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		filter.Status = &st
	}
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		filter.Limit = v
	}

	list, err := h.service.ListRequests(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]Response, 0, len(list))
	for i := range list {
		items = append(items, ResponseFromEntity(&list[i]))
	}
	response.Success(c, http.StatusOK, ListResponse{Requests: items})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.service.GetRequest(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking_request": ResponseFromEntity(r)})
}

func (h *Handler) Respond(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body RespondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR",
			`Invalid response. Must be "accept" or "decline"`, validator.Fields(err))
		return
	}
	decision := ProviderResponse(body.Response)

	r, err := h.service.ProviderRespond(c.Request.Context(), RespondInput{
		RequestID:     id,
		ProviderID:    c.GetInt64("user_id"),
		Decision:      decision,
		DeclineReason: body.DeclineReason,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	message := "Booking request accepted, awaiting client confirmation"
	switch r.Status {
	case StatusDeclined:
		message = "Booking request declined"
	case StatusAutoBooked:
		message = "Booking automatically confirmed"
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":         message,
		"booking_request": ResponseFromEntity(r),
	})
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.service.ClientConfirm(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":         "Booking confirmed",
		"booking_request": ResponseFromEntity(r),
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.service.ClientCancel(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":         "Booking request cancelled",
		"booking_request": ResponseFromEntity(r),
	})
}

// ExpireOld runs one sweep pass on demand.
func (h *Handler) ExpireOld(c *gin.Context) {
	n := h.sweeper.SweepOnce(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Expired %d old booking requests", n),
		"expired_count": n,
	})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking request ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	var conflict *ConflictError
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrGateRejected):
		response.Error(c, http.StatusConflict, "PROVIDER_UNAVAILABLE", "Stylist is not currently available for bookings")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking request not found")
	case errors.Is(err, ErrExpired):
		response.Error(c, http.StatusGone, "REQUEST_EXPIRED", "This booking request has expired")
	case errors.As(err, &conflict) && conflict.Current != nil:
		response.ErrorWithDetails(c, http.StatusConflict, "ALREADY_RESOLVED",
			"This booking request has already been processed",
			gin.H{"status": conflict.Current.Status},
		)
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "ALREADY_RESOLVED", "This booking request has already been processed")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, "TRY_AGAIN", "Service temporarily unavailable, please retry")
	case errors.Is(err, ErrMaterializationFailed):
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "BOOKING_FAILED", "Failed to create booking")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
