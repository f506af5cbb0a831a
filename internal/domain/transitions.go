package domain

import "fmt"

// transitions is the complete set of legal status moves. confirmed and cancelled are
// terminal, nothing moves backward and confirmed is only reachable from pending_payment.
var transitions = map[BookingStatus][]BookingStatus{
	StatusDraft:          {StatusHold, StatusCancelled},
	StatusHold:           {StatusPendingPayment, StatusCancelled},
	StatusPendingPayment: {StatusConfirmed, StatusCancelled},
}

// CanTransition returns true if from -> to is a legal move
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition for illegal moves
func ValidateTransition(from, to BookingStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
