package domain

import (
	"time"

	"github.com/google/uuid"
)

// Hold is a time-boxed exclusive claim on a boat's time range. It is embedded in its
// Booking; ExpiresAt is absolute so wall-clock drift during the hold does not matter.
type Hold struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	BoatID     string
	StartTime  time.Time
	EndTime    time.Time
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// IsExpired returns true once now reaches ExpiresAt
func (h Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// IsConsumed returns true after the hold was promoted to a pending payment
func (h Hold) IsConsumed() bool {
	return h.ConsumedAt != nil
}
