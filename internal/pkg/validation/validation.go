// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	"github.com/nekogravitycat/room-booking-backend/internal/room"
)

const (
	TagRoomStatus      = "room_status"
	TagBookingDecision = "booking_decision"
)

var ginOnce sync.Once

// Register adds the custom tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagRoomStatus, validateRoomStatus); err != nil {
		return fmt.Errorf("register %s: %w", TagRoomStatus, err)
	}
	if err := v.RegisterValidation(TagBookingDecision, validateBookingDecision); err != nil {
		return fmt.Errorf("register %s: %w", TagBookingDecision, err)
	}
	return nil
}

// RegisterGin adds the custom tags to gin's binding validator. Safe to call more than once.
func RegisterGin() error {
	var err error
	ginOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		err = Register(v)
	})
	return err
}

func validateRoomStatus(fl validator.FieldLevel) bool {
	return room.Status(fl.Field().String()).Valid()
}

// booking_decision accepts only the statuses an admin may decide on.
func validateBookingDecision(fl validator.FieldLevel) bool {
	switch booking.Status(fl.Field().String()) {
	case booking.StatusApproved, booking.StatusRejected:
		return true
	}
	return false
}
