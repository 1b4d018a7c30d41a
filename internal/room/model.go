package room

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/softdelete"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "room not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "capacity must be between 1 and 1000")
	ErrInvalidStatus   = apperror.New(http.StatusBadRequest, "invalid room status")
)

const (
	MinCapacity = 1
	MaxCapacity = 1000
)

// Status is the availability flag shown to requesters. It does not affect booking admission.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusUnavailable
}

// Room represents a bookable meeting room.
type Room struct {
	ID          string
	Name        string
	Location    string
	Capacity    int
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	softdelete.Marker
}

// Filter defines parameters for listing rooms. Results are ordered by name.
type Filter struct {
	Search      string // matches name, location or description
	Status      Status
	MinCapacity int
	Page        int
	PageSize    int
}
