package payments

import "github.com/google/uuid"

// Ключи метаданных PaymentIntent
const (
	MetadataBookingID = "booking_id"
	MetadataHoldID    = "hold_id"
	MetadataBoatID    = "boat_id"
)

// IntentRequest запрос на создание платежа
type IntentRequest struct {
	BookingID   uuid.UUID
	HoldID      uuid.UUID
	BoatID      string
	AmountCents int64
	Description string
	Email       *string
}

// Intent созданный платёж
type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
}

// EventKind результат платежа, о котором сообщил шлюз
type EventKind string

const (
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
	EventCanceled  EventKind = "canceled"
	// EventIgnored событие другого типа, сервис на него не реагирует
	EventIgnored EventKind = "ignored"
)

// PaymentEvent проверенное событие шлюза
type PaymentEvent struct {
	ID       string
	Type     string
	Kind     EventKind
	IntentID string
	// BookingID из метаданных; uuid.Nil, если метаданных нет
	BookingID      uuid.UUID
	FailureMessage string
}
