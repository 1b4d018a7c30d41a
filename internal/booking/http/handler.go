package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := booking.Filter{
		Search:   req.Search,
		Status:   booking.Status(req.Status),
		RoomID:   req.RoomID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) History(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := booking.HistoryFilter{
		Email:    req.Email,
		RoomID:   req.RoomID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	bookings, total, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Schedule lists the live bookings of a room, earliest first unless order=created.
func (h *Handler) Schedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	q, err := req.Query()
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, 0)
	for b, err := range h.service.ListForRoom(c.Request.Context(), uri.ID, q) {
		if err != nil {
			response.Error(c, err)
			return
		}
		items = append(items, NewBookingResponse(b))
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), body.ToServiceRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), uri.ID, body.ToServiceRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Decide approves or rejects a booking. Admin only.
func (h *Handler) Decide(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body DecideBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := booking.DecideRequest{
		Status: booking.Status(body.Status),
		Reason: body.Reason,
	}

	b, err := h.service.Decide(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Delete soft-deletes a booking. Admin only.
func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
