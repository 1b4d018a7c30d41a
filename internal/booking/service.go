package booking

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/events"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
)

// Event types published on the audit stream.
const (
	EventCreated = "booking.created"
	EventUpdated = "booking.updated"
	EventDecided = "booking.decided"
	EventDeleted = "booking.deleted"
)

// RoomLookup answers room questions for the booking core.
type RoomLookup interface {
	RoomExists(ctx context.Context, id string) (bool, error)
	IsRoomActive(ctx context.Context, id string) (bool, error)
}

type CreateRequest struct {
	RoomID    string
	StartTime time.Time
	EndTime   time.Time
	Requester Requester
	Purpose   string
}

// UpdateRequest carries a partial edit. Nil fields are left unchanged.
type UpdateRequest struct {
	RoomID         *string
	StartTime      *time.Time
	EndTime        *time.Time
	RequesterName  *string
	RequesterEmail *string
	RequesterPhone *string
	Purpose        *string
}

type DecideRequest struct {
	Status Status
	Reason string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	History(ctx context.Context, filter HistoryFilter) ([]*Booking, int, error)
	ListForRoom(ctx context.Context, roomID string, q RoomQuery) iter.Seq2[*Booking, error]
	Update(ctx context.Context, id string, req UpdateRequest) (*Booking, error)
	Decide(ctx context.Context, id string, req DecideRequest) (*Booking, error)
	SoftDelete(ctx context.Context, id string) error
}

type service struct {
	repo      Repository
	rooms     RoomLookup
	conflicts *ConflictResolver
	publisher events.Publisher
	log       *logger.Logger
	validate  *validator.Validate
}

func NewService(repo Repository, rooms RoomLookup, publisher events.Publisher, log *logger.Logger) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &service{
		repo:      repo,
		rooms:     rooms,
		conflicts: NewConflictResolver(repo),
		publisher: publisher,
		log:       log.With("component", "booking"),
		validate:  validator.New(),
	}
}

// requesterFields mirrors the field limits enforced at the HTTP boundary.
type requesterFields struct {
	Name    string  `validate:"required,max=100"`
	Email   string  `validate:"required,email,max=100"`
	Phone   *string `validate:"omitempty,max=50"`
	Purpose string  `validate:"required,max=500"`
}

func (s *service) validateFields(r Requester, purpose string) error {
	err := s.validate.Struct(requesterFields{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Phone:   r.Phone,
		Purpose: strings.TrimSpace(purpose),
	})
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	return nil
}

// checkRoom fails with ErrRoomNotFound unless the room exists and is not retired.
func (s *service) checkRoom(ctx context.Context, roomID string) error {
	exists, err := s.rooms.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRoomNotFound
	}

	active, err := s.rooms.IsRoomActive(ctx, roomID)
	if err != nil {
		return err
	}
	if !active {
		return ErrRoomNotFound
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if err := s.checkRoom(ctx, req.RoomID); err != nil {
		return nil, err
	}

	interval, err := NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if err := s.validateFields(req.Requester, req.Purpose); err != nil {
		return nil, err
	}

	// Only approved bookings block; competing pending requests are settled at approval.
	taken, err := s.conflicts.HasConflict(ctx, req.RoomID, interval, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	b := &Booking{
		RoomID: req.RoomID,
		Requester: Requester{
			Name:  strings.TrimSpace(req.Requester.Name),
			Email: strings.TrimSpace(req.Requester.Email),
			Phone: req.Requester.Phone,
		},
		Purpose:   strings.TrimSpace(req.Purpose),
		StartTime: interval.Start,
		EndTime:   interval.End,
		Status:    StatusPending,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.publish(ctx, EventCreated, b)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) History(ctx context.Context, filter HistoryFilter) ([]*Booking, int, error) {
	return s.repo.History(ctx, filter)
}

// ListForRoom returns the live bookings of a room. The sequence is lazy and each range
// over it runs a fresh scan. A retired or missing room yields ErrRoomNotFound.
func (s *service) ListForRoom(ctx context.Context, roomID string, q RoomQuery) iter.Seq2[*Booking, error] {
	return func(yield func(*Booking, error) bool) {
		if err := s.checkRoom(ctx, roomID); err != nil {
			yield(nil, err)
			return
		}

		stopped := false
		err := s.repo.ScanForRoom(ctx, roomID, q, func(b *Booking) bool {
			if !yield(b, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(nil, err)
		}
	}
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !b.Status.Editable() {
		return nil, ErrInvalidState
	}

	if req.RoomID != nil && *req.RoomID != b.RoomID {
		if err := s.checkRoom(ctx, *req.RoomID); err != nil {
			return nil, err
		}
		b.RoomID = *req.RoomID
	}

	if req.StartTime != nil {
		b.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		b.EndTime = *req.EndTime
	}
	if _, err := NewInterval(b.StartTime, b.EndTime); err != nil {
		return nil, err
	}

	if req.RequesterName != nil {
		b.Requester.Name = strings.TrimSpace(*req.RequesterName)
	}
	if req.RequesterEmail != nil {
		b.Requester.Email = strings.TrimSpace(*req.RequesterEmail)
	}
	if req.RequesterPhone != nil {
		b.Requester.Phone = req.RequesterPhone
	}
	if req.Purpose != nil {
		b.Purpose = strings.TrimSpace(*req.Purpose)
	}
	if err := s.validateFields(b.Requester, b.Purpose); err != nil {
		return nil, err
	}

	// Overlap is resolved at approval.
	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, errStatusChanged) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	s.publish(ctx, EventUpdated, b)
	return b, nil
}

func (s *service) Decide(ctx context.Context, id string, req DecideRequest) (*Booking, error) {
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	reason := strings.TrimSpace(req.Reason)
	if len(reason) > MaxReasonLength {
		return nil, ErrInvalidInput
	}

	var decided *Booking
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		// Lock order is always booking, then room.
		b, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := ValidateTransition(b.Status, req.Status, reason); err != nil {
			return err
		}

		if req.Status == StatusApproved {
			if err := tx.LockRoom(ctx, b.RoomID); err != nil {
				return err
			}
			taken, err := NewConflictResolver(tx).HasConflict(ctx, b.RoomID, b.Interval(), b.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotTaken
			}
			b.RejectionReason = nil
		} else {
			b.RejectionReason = &reason
		}

		b.Status = req.Status
		if err := tx.UpdateStatus(ctx, b); err != nil {
			return err
		}
		decided = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking decided",
		"booking_id", decided.ID,
		"room_id", decided.RoomID,
		"status", decided.Status,
	)
	s.publish(ctx, EventDecided, decided)
	return decided, nil
}

func (s *service) SoftDelete(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, EventDeleted, b)
	return nil
}

type eventPayload struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Status    Status    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Reason    *string   `json:"rejection_reason,omitempty"`
}

// publish emits a lifecycle event keyed by room. Delivery is best effort and never fails the operation.
func (s *service) publish(ctx context.Context, eventType string, b *Booking) {
	e := events.New(eventType, b.RoomID, eventPayload{
		ID:        b.ID,
		RoomID:    b.RoomID,
		Status:    b.Status,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Reason:    b.RejectionReason,
	})
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn("publish booking event failed",
			"event_type", eventType,
			"booking_id", b.ID,
			"error", err,
		)
	}
}
