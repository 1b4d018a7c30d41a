package room

import (
	"context"
	"strings"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/booking"
)

type CreateRequest struct {
	Name        string
	Location    string
	Capacity    int
	Description string
	Status      Status
}

type UpdateRequest struct {
	Name        *string
	Location    *string
	Capacity    *int
	Description *string
	Status      *Status
}

// SlotChecker reports whether a room already has an approved booking in a window.
type SlotChecker interface {
	HasConflict(ctx context.Context, roomID string, candidate booking.Interval, excludeID string) (bool, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	// ListAvailable returns live rooms flagged available that have no approved booking in [start, end).
	ListAvailable(ctx context.Context, start, end time.Time) ([]*Room, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Room, error)
	Delete(ctx context.Context, id string) error

	RoomExists(ctx context.Context, id string) (bool, error)
	IsRoomActive(ctx context.Context, id string) (bool, error)
}

type service struct {
	repo  Repository
	slots SlotChecker
}

func NewService(repo Repository, slots SlotChecker) Service {
	return &service{
		repo:  repo,
		slots: slots,
	}
}

func validCapacity(c int) bool {
	return c >= MinCapacity && c <= MaxCapacity
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if !validCapacity(req.Capacity) {
		return nil, ErrInvalidCapacity
	}
	if req.Status == "" {
		req.Status = StatusAvailable
	}
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	room := &Room{
		Name:        strings.TrimSpace(req.Name),
		Location:    strings.TrimSpace(req.Location),
		Capacity:    req.Capacity,
		Description: req.Description,
		Status:      req.Status,
	}

	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListAvailable(ctx context.Context, start, end time.Time) ([]*Room, error) {
	window, err := booking.NewInterval(start, end)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListByStatus(ctx, StatusAvailable)
	if err != nil {
		return nil, err
	}

	free := make([]*Room, 0, len(candidates))
	for _, room := range candidates {
		taken, err := s.slots.HasConflict(ctx, room.ID, window, "")
		if err != nil {
			return nil, err
		}
		if !taken {
			free = append(free, room)
		}
	}
	return free, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		room.Location = strings.TrimSpace(*req.Location)
	}
	if req.Capacity != nil {
		if !validCapacity(*req.Capacity) {
			return nil, ErrInvalidCapacity
		}
		room.Capacity = *req.Capacity
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		room.Status = *req.Status
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *service) RoomExists(ctx context.Context, id string) (bool, error) {
	exists, _, err := s.repo.Lookup(ctx, id)
	return exists, err
}

// IsRoomActive reports whether the room has not been soft-deleted.
// The availability flag is informational and does not make a room inactive.
func (s *service) IsRoomActive(ctx context.Context, id string) (bool, error) {
	_, live, err := s.repo.Lookup(ctx, id)
	return live, err
}
