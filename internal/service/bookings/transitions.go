package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/pkg/ptr"
)

// ConfirmPayment переводит бронирование из pending_payment в confirmed по успешному платежу.
// Повторное уведомление для уже подтверждённого бронирования ничего не делает.
func (s *Service) ConfirmPayment(ctx context.Context, id uuid.UUID, intentID string) (*domain.Booking, error) {
	b, _, err := s.transition(ctx, "ConfirmPayment", id, func(b *domain.Booking, now time.Time) (*domain.StatusChange, error) {
		if b.Status == domain.StatusConfirmed {
			return nil, nil
		}
		if err := checkIntent(b, intentID); err != nil {
			return nil, err
		}
		if b.Status != domain.StatusPendingPayment {
			return nil, fmt.Errorf("%w: booking %s is %s", domain.ErrInvalidTransition, b.ID, b.Status)
		}
		return &domain.StatusChange{
			From:          domain.StatusPendingPayment,
			To:            domain.StatusConfirmed,
			At:            now,
			PaymentStatus: ptr.Ptr(domain.PaymentCompleted),
		}, nil
	})
	return b, err
}

// FailPayment отменяет бронирование в pending_payment после неуспешного платежа.
// Повторное уведомление для уже отменённого бронирования ничего не делает.
func (s *Service) FailPayment(ctx context.Context, id uuid.UUID, intentID, reason string) (*domain.Booking, error) {
	if reason == "" {
		reason = domain.ReasonPaymentFailed
	}

	b, _, err := s.transition(ctx, "FailPayment", id, func(b *domain.Booking, now time.Time) (*domain.StatusChange, error) {
		if b.Status == domain.StatusCancelled {
			return nil, nil
		}
		if err := checkIntent(b, intentID); err != nil {
			return nil, err
		}
		if b.Status != domain.StatusPendingPayment {
			return nil, fmt.Errorf("%w: booking %s is %s", domain.ErrInvalidTransition, b.ID, b.Status)
		}
		return &domain.StatusChange{
			From:          domain.StatusPendingPayment,
			To:            domain.StatusCancelled,
			At:            now,
			PaymentStatus: ptr.Ptr(domain.PaymentFailed),
			Reason:        ptr.Ptr(reason),
		}, nil
	})
	return b, err
}

// CancelRequest параметры отмены
type CancelRequest struct {
	Reason string
	// PaymentStatus refunded после оплаты или failed до неё
	PaymentStatus *domain.PaymentStatus
	// Force разрешает отмену подтверждённого бронирования
	Force bool

	edit editFunc
}

// Cancel отменяет бронирование в любом нетерминальном статусе; подтверждённое только с Force.
// Отмена уже отменённого бронирования ничего не делает.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req CancelRequest) (*domain.Booking, error) {
	reason := req.Reason
	if reason == "" {
		reason = domain.ReasonAdminCancelled
	}

	b, change, err := s.transitionWith(ctx, "Cancel", id, req.edit, func(b *domain.Booking, now time.Time) (*domain.StatusChange, error) {
		return cancelChange(b, reason, req.PaymentStatus, req.Force, now)
	})
	if err != nil {
		return nil, err
	}
	if change != nil && change.From == domain.StatusConfirmed {
		s.metrics.IncAdminOverride(string(domain.StatusCancelled))
		s.logger.Warn("Cancel: forced confirmed -> cancelled for booking=%s, reason=%q", id, reason)
	}
	return b, nil
}

func cancelChange(b *domain.Booking, reason string, payment *domain.PaymentStatus, force bool, now time.Time) (*domain.StatusChange, error) {
	if b.Status == domain.StatusCancelled {
		return nil, nil
	}

	change := &domain.StatusChange{
		From:   b.Status,
		To:     domain.StatusCancelled,
		At:     now,
		Reason: ptr.Ptr(reason),
	}
	if payment != nil && *payment != b.PaymentStatus {
		if !canCancelWithPayment(b.PaymentStatus, *payment) {
			return nil, fmt.Errorf("%w: payment %s -> %s", domain.ErrInvalidTransition, b.PaymentStatus, *payment)
		}
		change.PaymentStatus = payment
	}

	if b.Status == domain.StatusConfirmed {
		if !force {
			return nil, fmt.Errorf("%w: booking %s is confirmed", ErrForceRequired, b.ID)
		}
		return change, nil
	}
	if err := domain.ValidateTransition(b.Status, domain.StatusCancelled); err != nil {
		return nil, err
	}
	return change, nil
}

// canCancelWithPayment возвращение средств допускается только после оплаты,
// отметка о неуспешной оплате только для ещё не оплаченного бронирования
func canCancelWithPayment(from, to domain.PaymentStatus) bool {
	switch to {
	case domain.PaymentRefunded:
		return from == domain.PaymentCompleted
	case domain.PaymentFailed:
		return from == domain.PaymentPending
	}
	return false
}

// Expire отменяет холд, срок которого истёк. Возвращает false, если бронирование
// уже не в hold или срок ещё не истёк.
func (s *Service) Expire(ctx context.Context, id uuid.UUID) (bool, error) {
	_, change, err := s.transition(ctx, "Expire", id, func(b *domain.Booking, now time.Time) (*domain.StatusChange, error) {
		if !b.HoldExpired(now) {
			return nil, nil
		}
		return &domain.StatusChange{
			From:   domain.StatusHold,
			To:     domain.StatusCancelled,
			At:     now,
			Reason: ptr.Ptr(domain.ReasonHoldExpired),
		}, nil
	})
	if err != nil {
		return false, err
	}
	if change == nil {
		return false, nil
	}

	s.metrics.IncHoldExpired()
	return true, nil
}

// ForceConfirmRequest параметры ручного подтверждения
type ForceConfirmRequest struct {
	Reason string
	// PaymentStatus, если задан, должен быть completed
	PaymentStatus *domain.PaymentStatus

	edit editFunc
}

// ForceConfirm ручное подтверждение без сигнала платёжного шлюза.
// Допускается только из hold и pending_payment; оплата отмечается как completed.
func (s *Service) ForceConfirm(ctx context.Context, id uuid.UUID, req ForceConfirmRequest) (*domain.Booking, error) {
	b, change, err := s.transitionWith(ctx, "ForceConfirm", id, req.edit, func(b *domain.Booking, now time.Time) (*domain.StatusChange, error) {
		if req.PaymentStatus != nil && *req.PaymentStatus != domain.PaymentCompleted {
			return nil, fmt.Errorf("%w: confirmed booking requires completed payment", domain.ErrInvalidTransition)
		}
		if b.Status == domain.StatusConfirmed {
			return nil, nil
		}
		return forceConfirmChange(b, now)
	})
	if err != nil {
		return nil, err
	}
	if change != nil {
		s.metrics.IncAdminOverride(string(domain.StatusConfirmed))
		s.logger.Warn("ForceConfirm: booking=%s confirmed by administrator without payment signal, reason=%q", id, req.Reason)
	}
	return b, nil
}

func forceConfirmChange(b *domain.Booking, now time.Time) (*domain.StatusChange, error) {
	if b.Status != domain.StatusHold && b.Status != domain.StatusPendingPayment {
		return nil, fmt.Errorf("%w: cannot force confirm booking %s in status %s", domain.ErrInvalidTransition, b.ID, b.Status)
	}
	return &domain.StatusChange{
		From:          b.Status,
		To:            domain.StatusConfirmed,
		At:            now,
		PaymentStatus: ptr.Ptr(domain.PaymentCompleted),
		ConsumeHold:   b.Status == domain.StatusHold,
	}, nil
}

// checkIntent отклоняет событие, относящееся к другому payment intent
func checkIntent(b *domain.Booking, intentID string) error {
	if intentID == "" || b.PaymentIntentID == nil {
		return nil
	}
	if *b.PaymentIntentID != intentID {
		return fmt.Errorf("%w: booking %s has intent %s, got %s", ErrPaymentMismatch, b.ID, *b.PaymentIntentID, intentID)
	}
	return nil
}
