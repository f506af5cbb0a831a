package domain

import "errors"

// Reservation error taxonomy shared by every layer
var (
	// ErrSlotUnavailable another active reservation overlaps the requested range
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrHoldExpired the hold TTL elapsed or the hold was released; the caller must re-quote
	ErrHoldExpired = errors.New("hold expired")

	// ErrHoldNotFound no hold with this id was ever issued
	ErrHoldNotFound = errors.New("hold not found")

	// ErrHoldAlreadyConsumed the hold was already promoted to a booking
	ErrHoldAlreadyConsumed = errors.New("hold already consumed")

	ErrNoSeasonPricing  = errors.New("no season pricing")
	ErrBoatNotFound     = errors.New("boat not found")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrExtraNotFound    = errors.New("extra not found")
	ErrCapacityExceeded = errors.New("number of people exceeds boat capacity")
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrPaymentGateway opaque failure of the external payment collaborator
	ErrPaymentGateway = errors.New("payment gateway error")

	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidCatalog    = errors.New("invalid catalog")
)
