package http

import (
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for the admin booking listing.
type ListBookingsRequest struct {
	request.ListParams
	Search string `form:"search" binding:"omitempty,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	RoomID string `form:"room_id" binding:"omitempty,uuid"`
}

// HistoryRequest defines query parameters for a requester's booking history.
type HistoryRequest struct {
	request.ListParams
	Email  string `form:"email" binding:"omitempty,email"`
	RoomID string `form:"room_id" binding:"omitempty,uuid"`
}

// ScheduleRequest defines query parameters for a room's schedule.
type ScheduleRequest struct {
	Start *time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End   *time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
	Order string     `form:"order" binding:"omitempty,oneof=start created"`
}

// Window returns the requested window, or nil when no bound was given.
// A half-open query (only start or only end) is rejected.
func (r *ScheduleRequest) Window() (*booking.Interval, error) {
	if r.Start == nil && r.End == nil {
		return nil, nil
	}
	if r.Start == nil || r.End == nil {
		return nil, booking.ErrInvalidRange
	}
	iv, err := booking.NewInterval(r.Start.UTC(), r.End.UTC())
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *ScheduleRequest) Query() (booking.RoomQuery, error) {
	window, err := r.Window()
	if err != nil {
		return booking.RoomQuery{}, err
	}
	q := booking.RoomQuery{Window: window, Order: booking.OrderByStart}
	if r.Order == "created" {
		q.Order = booking.OrderByCreatedDesc
	}
	return q, nil
}

type RoomTag struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type BookingResponse struct {
	ID              string     `json:"id"`
	Room            RoomTag    `json:"room"`
	RequesterName   string     `json:"requester_name"`
	RequesterEmail  string     `json:"requester_email"`
	RequesterPhone  *string    `json:"requester_phone"`
	Purpose         string     `json:"purpose"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		Room:            RoomTag{ID: b.RoomID, Name: b.RoomName},
		RequesterName:   b.Requester.Name,
		RequesterEmail:  b.Requester.Email,
		RequesterPhone:  b.Requester.Phone,
		Purpose:         b.Purpose,
		StartTime:       b.StartTime.UTC(),
		EndTime:         b.EndTime.UTC(),
		Status:          string(b.Status),
		RejectionReason: b.RejectionReason,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	RoomID         string    `json:"room_id" binding:"required,uuid"`
	RequesterName  string    `json:"requester_name" binding:"required,max=100"`
	RequesterEmail string    `json:"requester_email" binding:"required,email,max=100"`
	RequesterPhone *string   `json:"requester_phone" binding:"omitempty,max=50"`
	Purpose        string    `json:"purpose" binding:"required,max=500"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
}

// ToServiceRequest converts the body, normalizing times to UTC.
func (r *CreateBookingRequest) ToServiceRequest() booking.CreateRequest {
	return booking.CreateRequest{
		RoomID:    r.RoomID,
		StartTime: r.StartTime.UTC(),
		EndTime:   r.EndTime.UTC(),
		Requester: booking.Requester{
			Name:  r.RequesterName,
			Email: r.RequesterEmail,
			Phone: r.RequesterPhone,
		},
		Purpose: r.Purpose,
	}
}

type UpdateBookingRequest struct {
	RoomID         *string    `json:"room_id" binding:"omitempty,uuid"`
	RequesterName  *string    `json:"requester_name" binding:"omitempty,max=100"`
	RequesterEmail *string    `json:"requester_email" binding:"omitempty,email,max=100"`
	RequesterPhone *string    `json:"requester_phone" binding:"omitempty,max=50"`
	Purpose        *string    `json:"purpose" binding:"omitempty,max=500"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
}

func (r *UpdateBookingRequest) ToServiceRequest() booking.UpdateRequest {
	req := booking.UpdateRequest{
		RoomID:         r.RoomID,
		RequesterName:  r.RequesterName,
		RequesterEmail: r.RequesterEmail,
		RequesterPhone: r.RequesterPhone,
		Purpose:        r.Purpose,
	}
	if r.StartTime != nil {
		start := r.StartTime.UTC()
		req.StartTime = &start
	}
	if r.EndTime != nil {
		end := r.EndTime.UTC()
		req.EndTime = &end
	}
	return req
}

// DecideBookingRequest is the admin approval or rejection.
type DecideBookingRequest struct {
	Status string `json:"status" binding:"required,booking_decision"`
	Reason string `json:"rejection_reason" binding:"omitempty,max=500"`
}
