package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := map[[2]BookingStatus]bool{
		{StatusDraft, StatusHold}:               true,
		{StatusDraft, StatusCancelled}:          true,
		{StatusHold, StatusPendingPayment}:      true,
		{StatusHold, StatusCancelled}:           true,
		{StatusPendingPayment, StatusConfirmed}: true,
		{StatusPendingPayment, StatusCancelled}: true,
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			want := legal[[2]BookingStatus{from, to}]
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestValidateTransition_RejectsBackwardAndSkips(t *testing.T) {
	assert.ErrorIs(t, ValidateTransition(StatusConfirmed, StatusHold), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(StatusHold, StatusConfirmed), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(StatusCancelled, StatusHold), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(StatusConfirmed, StatusCancelled), ErrInvalidTransition)
	assert.NoError(t, ValidateTransition(StatusHold, StatusPendingPayment))
}
