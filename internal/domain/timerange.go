package domain

import "time"

// TimeRange is a half-open interval [Start, End)
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange normalizes both instants to UTC and checks Start < End
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidTimeRange
	}
	r := TimeRange{Start: start.UTC(), End: end.UTC()}
	if !r.Start.Before(r.End) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return r, nil
}

// Duration returns End - Start
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps uses the half-open test: touching intervals do not overlap
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Equal compares instants, ignoring location
func (r TimeRange) Equal(other TimeRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

// FindBlocking returns the bookings that occupy r at instant now
func FindBlocking(bookings []*Booking, r TimeRange, now time.Time) []*Booking {
	blocking := make([]*Booking, 0)
	for _, b := range bookings {
		if b.BlocksSlot(now) && b.Range().Overlaps(r) {
			blocking = append(blocking, b)
		}
	}
	return blocking
}
