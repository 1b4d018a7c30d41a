package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/room-booking-backend/internal/room"
)

type Handler struct {
	service room.Service
}

func NewHandler(service room.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := room.Filter{
		Search:      req.Search,
		Status:      room.Status(req.Status),
		MinCapacity: req.MinCapacity,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}

	rooms, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewResponse(r)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Available lists rooms with no approved booking in the requested window.
func (h *Handler) Available(c *gin.Context) {
	var req AvailableRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	rooms, err := h.service.ListAvailable(c.Request.Context(), req.Start.UTC(), req.End.UTC())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewResponse(r)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), room.CreateRequest{
		Name:        body.Name,
		Location:    body.Location,
		Capacity:    body.Capacity,
		Description: body.Description,
		Status:      room.Status(body.Status),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.Update(c.Request.Context(), uri.ID, body.ToServiceRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
