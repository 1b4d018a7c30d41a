package booking

import (
	"context"
	"fmt"
)

// ApprovedFinder returns the approved, live bookings of a room that may intersect window.
type ApprovedFinder interface {
	ApprovedInWindow(ctx context.Context, roomID string, window Interval) ([]*Booking, error)
}

// ConflictResolver decides whether a candidate interval collides with an approved booking.
// Pending and rejected bookings never hold a slot.
type ConflictResolver struct {
	finder ApprovedFinder
}

func NewConflictResolver(finder ApprovedFinder) *ConflictResolver {
	return &ConflictResolver{finder: finder}
}

// HasConflict reports whether candidate overlaps any approved, live booking of roomID
// other than excludeID. Pass an empty excludeID for new bookings.
func (r *ConflictResolver) HasConflict(ctx context.Context, roomID string, candidate Interval, excludeID string) (bool, error) {
	existing, err := r.finder.ApprovedInWindow(ctx, roomID, candidate)
	if err != nil {
		return false, fmt.Errorf("find approved bookings failed: %w", err)
	}

	for _, b := range existing {
		if b.ID == excludeID || b.Retired() || b.Status != StatusApproved {
			continue
		}
		if candidate.Overlaps(b.Interval()) {
			return true, nil
		}
	}
	return false, nil
}
