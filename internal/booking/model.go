package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/softdelete"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "booking not found")
	ErrRoomNotFound  = apperror.New(http.StatusNotFound, "room not found")
	ErrInvalidRange  = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidState  = apperror.New(http.StatusConflict, "only pending bookings may be modified")
	ErrSlotTaken     = apperror.New(http.StatusConflict, "time slot already booked")
	ErrMissingReason = apperror.New(http.StatusBadRequest, "rejection reason is required")
	ErrInvalidStatus = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrInvalidInput  = apperror.New(http.StatusBadRequest, "invalid input parameters")
)

// Field limits.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 100
	MaxPhoneLength   = 50
	MaxPurposeLength = 500
	MaxReasonLength  = 500
)

// Requester identifies who asked for the room. Bookings are not tied to user accounts.
type Requester struct {
	Name  string
	Email string
	Phone *string
}

type Booking struct {
	ID              string
	RoomID          string
	RoomName        string
	Requester       Requester
	Purpose         string
	StartTime       time.Time
	EndTime         time.Time
	Status          Status
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	softdelete.Marker
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Filter is the admin listing query. Results are ordered by creation time, newest first.
type Filter struct {
	Search   string // matches requester name, email or purpose
	Status   Status
	RoomID   string
	Page     int
	PageSize int
}

// HistoryFilter selects the bookings of one requester, newest start first.
type HistoryFilter struct {
	Email    string
	RoomID   string
	Page     int
	PageSize int
}

type Order int

const (
	// OrderByStart lists the earliest booking first. Used for availability.
	OrderByStart Order = iota
	// OrderByCreatedDesc lists the most recently requested booking first. Used by admins.
	OrderByCreatedDesc
)

// RoomQuery narrows ListForRoom. A nil Window returns every live booking of the room.
type RoomQuery struct {
	Window *Interval
	Status Status
	Order  Order
}
