package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	StatusDraft          BookingStatus = "draft"
	StatusHold           BookingStatus = "hold"
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCancelled      BookingStatus = "cancelled"
)

// PaymentStatus is orthogonal to BookingStatus; confirmed implies completed
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Source tells where a booking was created
type Source string

const (
	SourceWeb   Source = "web"
	SourceAdmin Source = "admin"
)

// ExtraSelection is a chosen extra with its quantity and the unit price at quote time
type ExtraSelection struct {
	ExtraID   string `json:"extraId"`
	Quantity  int    `json:"quantity"`
	UnitPrice Cents  `json:"unitPrice"`
}

// Booking is one reservation attempt for a boat. Abandoned and expired attempts are
// kept with status cancelled for audit.
type Booking struct {
	ID             uuid.UUID
	BoatID         string
	StartTime      time.Time // inclusive, UTC
	EndTime        time.Time // exclusive, UTC
	Duration       DurationBucket
	Season         string
	NumberOfPeople int
	SelectedExtras []ExtraSelection

	BasePrice      Cents
	ExtrasTotal    Cents
	Deposit        Cents
	TotalAmount    Cents
	CouponCode     *string
	CatalogVersion int64

	Status        BookingStatus
	PaymentStatus PaymentStatus
	Source        Source

	// ClientRef identifies the caller for idempotent quote retries
	ClientRef *string

	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	Notes         *string

	// Embedded hold
	HoldID         uuid.UUID
	HoldIssuedAt   time.Time
	HoldExpiresAt  time.Time
	HoldConsumedAt *time.Time

	PaymentIntentID *string

	CancellationReason *string
	CancelledAt        *time.Time
	ConfirmedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the booked interval
func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

// Hold returns the hold view of the booking
func (b *Booking) Hold() Hold {
	return Hold{
		ID:         b.HoldID,
		BookingID:  b.ID,
		BoatID:     b.BoatID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		IssuedAt:   b.HoldIssuedAt,
		ExpiresAt:  b.HoldExpiresAt,
		ConsumedAt: b.HoldConsumedAt,
	}
}

// IsActive returns true if the status participates in the no-overlap invariant
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// IsTerminal returns true for confirmed and cancelled bookings
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCancelled
}

// HoldExpired returns true if the booking is still in hold and its TTL has elapsed
func (b *Booking) HoldExpired(now time.Time) bool {
	return b.Status == StatusHold && !now.Before(b.HoldExpiresAt)
}

// BlocksSlot returns true if the booking currently occupies its time range.
// A hold whose TTL elapsed no longer blocks even before the reaper cancels it.
func (b *Booking) BlocksSlot(now time.Time) bool {
	if !b.IsActive() {
		return false
	}
	return !b.HoldExpired(now)
}

// CanBeEdited returns true if administrative edits are permitted
func (b *Booking) CanBeEdited() bool {
	return b.Status != StatusCancelled
}

// SameRequest returns true if the booking was created by clientRef for the exact range
func (b *Booking) SameRequest(clientRef *string, r TimeRange) bool {
	if clientRef == nil || b.ClientRef == nil || *clientRef != *b.ClientRef {
		return false
	}
	return b.StartTime.Equal(r.Start) && b.EndTime.Equal(r.End)
}

// IsActiveStatus returns true for hold, pending_payment and confirmed
func IsActiveStatus(s BookingStatus) bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// ParseBookingStatus validates a status string
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	for _, valid := range AllStatuses {
		if status == valid {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

// ParsePaymentStatus validates a payment status string
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch p := PaymentStatus(s); p {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return p, nil
	}
	return "", ErrInvalidStatus
}

// BookingsFilter is used by admin listings
type BookingsFilter struct {
	BoatID *string
	Status *BookingStatus
	From   *time.Time // bookings ending after From
	To     *time.Time // bookings starting before To
	Limit  int
	Offset int
}

// StatusChange describes one status transition and the fields written together with it.
// It is applied only if the booking is still in From.
type StatusChange struct {
	From          BookingStatus
	To            BookingStatus
	At            time.Time
	PaymentStatus *PaymentStatus
	Reason        *string
	// ConsumeHold marks the embedded hold as consumed at At
	ConsumeHold bool
}

// Apply writes change into b. The caller is responsible for checking legality.
func (b *Booking) Apply(change StatusChange) {
	at := change.At
	b.Status = change.To
	b.UpdatedAt = at
	if change.PaymentStatus != nil {
		b.PaymentStatus = *change.PaymentStatus
	}
	if change.ConsumeHold {
		b.HoldConsumedAt = &at
	}
	switch change.To {
	case StatusCancelled:
		b.CancellationReason = change.Reason
		b.CancelledAt = &at
	case StatusConfirmed:
		b.ConfirmedAt = &at
	}
}
