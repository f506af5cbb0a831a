package notifier

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// Типы событий бронирования; используются как routing key
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent событие жизненного цикла бронирования
type BookingEvent struct {
	Type             string    `json:"type"`
	BookingID        uuid.UUID `json:"bookingId"`
	BoatID           string    `json:"boatId"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	TotalAmountCents int64     `json:"totalAmountCents"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"paymentStatus"`
	Reason           *string   `json:"reason,omitempty"`
	CustomerEmail    *string   `json:"customerEmail,omitempty"`
	OccurredAt       time.Time `json:"occurredAt"`
}

// NewBookingEvent собирает событие из текущего состояния бронирования
func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:             eventType,
		BookingID:        b.ID,
		BoatID:           b.BoatID,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		TotalAmountCents: int64(b.TotalAmount),
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		Reason:           b.CancellationReason,
		CustomerEmail:    b.CustomerEmail,
		OccurredAt:       at,
	}
}
