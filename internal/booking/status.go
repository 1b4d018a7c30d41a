package booking

import "strings"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Editable reports whether a booking in this status accepts field edits.
func (s Status) Editable() bool {
	return s == StatusPending
}

// ParseStatus converts the wire value to a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ValidateTransition checks the rules that do not depend on other bookings.
// Approval additionally requires a free slot, which the service checks under lock.
//
//	pending|approved|rejected -> approved   allowed
//	pending|approved|rejected -> rejected   requires a reason
//	anything -> pending                     never
func ValidateTransition(from, to Status, reason string) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}

	switch to {
	case StatusApproved:
		return nil
	case StatusRejected:
		if strings.TrimSpace(reason) == "" {
			return ErrMissingReason
		}
		return nil
	default:
		return ErrInvalidState
	}
}
