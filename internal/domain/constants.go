package domain

import "time"

// DefaultHoldTTL is the lifetime of a hold from issuance
const DefaultHoldTTL = 30 * time.Minute

// Cancellation reasons recorded by the system
const (
	ReasonHoldExpired    = "hold expired"
	ReasonReleased       = "released by customer"
	ReasonPaymentFailed  = "payment failed"
	ReasonGatewayError   = "payment gateway error"
	ReasonAdminCancelled = "cancelled by administrator"
)

// Business validation constants
const (
	MaxNotesLength     = 500
	MaxClientRefLength = 128
	MaxExtraQuantity   = 50
)

// Time format constants
const (
	DateFormat = "2006-01-02"
)

// ActiveStatuses are the statuses covered by the no-overlap invariant
var ActiveStatuses = []BookingStatus{
	StatusHold,
	StatusPendingPayment,
	StatusConfirmed,
}

// AllStatuses lists every booking status
var AllStatuses = []BookingStatus{
	StatusDraft,
	StatusHold,
	StatusPendingPayment,
	StatusConfirmed,
	StatusCancelled,
}
