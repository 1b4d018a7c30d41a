package booking

import "time"

// Interval is the half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval returns the interval [start, end). It fails with ErrInvalidRange unless start is before end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidRange
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two intervals share any instant.
// Touching intervals, where one ends exactly when the other starts, do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}
