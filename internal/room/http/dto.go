package http

import (
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/room"
)

type ListRoomsRequest struct {
	request.ListParams
	Search      string `form:"search" binding:"omitempty,max=100"`
	Status      string `form:"status" binding:"omitempty,room_status"`
	MinCapacity int    `form:"min_capacity" binding:"omitempty,min=1,max=1000"`
}

type AvailableRoomsRequest struct {
	Start time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End   time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type RoomResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	Capacity    int        `json:"capacity"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func NewResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		Capacity:    r.Capacity,
		Description: r.Description,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type CreateRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Location    string `json:"location" binding:"max=200"`
	Capacity    int    `json:"capacity" binding:"required,min=1,max=1000"`
	Description string `json:"description" binding:"max=1000"`
	Status      string `json:"status" binding:"omitempty,room_status"`
}

type UpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
	Capacity    *int    `json:"capacity" binding:"omitempty,min=1,max=1000"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Status      *string `json:"status" binding:"omitempty,room_status"`
}

func (r *UpdateRequest) ToServiceRequest() room.UpdateRequest {
	req := room.UpdateRequest{
		Name:        r.Name,
		Location:    r.Location,
		Capacity:    r.Capacity,
		Description: r.Description,
	}
	if r.Status != nil {
		s := room.Status(*r.Status)
		req.Status = &s
	}
	return req
}
