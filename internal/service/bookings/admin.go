package bookings

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/service/bookings/models"
	"github.com/m04kA/SMC-BoatRental/pkg/ptr"
)

// AdminUpdate административное изменение бронирования.
//
// Меняет данные клиента, заметки, число людей, суммы и купон. Статус можно перевести только
// в cancelled (подтверждённое бронирование требует force) или в confirmed (только с force).
// Статус оплаты refunded допускается только вместе с отменой оплаченного бронирования.
// Лодку и интервал изменить нельзя, отменённые бронирования не редактируются.
func (s *Service) AdminUpdate(ctx context.Context, id uuid.UUID, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("AdminUpdate: updating booking id=%s", id)

	if req.TouchesRange() {
		s.logger.Warn("AdminUpdate: attempt to change boat or time range of booking id=%s", id)
		return nil, ErrRangeNotEditable
	}
	target, payment, err := parseAdminStatuses(req)
	if err != nil {
		s.logger.Warn("AdminUpdate: invalid request for booking id=%s: %v", id, err)
		return nil, err
	}
	if err := validateAdminFields(req); err != nil {
		s.logger.Warn("AdminUpdate: invalid request for booking id=%s: %v", id, err)
		return nil, err
	}

	edit := s.adminEdit(req)
	reason := ptr.Value(req.Reason)

	var booking *domain.Booking
	switch {
	case target != nil && *target == domain.StatusCancelled:
		booking, err = s.Cancel(ctx, id, CancelRequest{
			Reason:        reason,
			PaymentStatus: payment,
			Force:         req.Force,
			edit:          edit,
		})
	case target != nil && *target == domain.StatusConfirmed && req.Force:
		booking, err = s.ForceConfirm(ctx, id, ForceConfirmRequest{
			Reason:        reason,
			PaymentStatus: payment,
			edit:          edit,
		})
	default:
		booking, _, err = s.transitionWith(ctx, "AdminUpdate", id, edit, keepStatus(target, payment))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("AdminUpdate: successfully updated booking id=%s", id)
	return models.FromDomainBooking(booking), nil
}

// adminEdit переносит поля запроса в бронирование внутри транзакции перехода
func (s *Service) adminEdit(req *models.UpdateBookingRequest) editFunc {
	return func(ctx context.Context, b *domain.Booking, now time.Time) error {
		if !b.CanBeEdited() {
			return fmt.Errorf("%w: booking %s is %s", ErrNotEditable, b.ID, b.Status)
		}
		if !applyAdminFields(b, req) {
			return nil
		}
		b.UpdatedAt = now
		return s.repo.Update(ctx, b)
	}
}

// keepStatus решение для правки без смены статуса: любой другой целевой статус
// или статус оплаты отклоняется
func keepStatus(target *domain.BookingStatus, payment *domain.PaymentStatus) decision {
	return func(b *domain.Booking, _ time.Time) (*domain.StatusChange, error) {
		if target != nil && *target != b.Status {
			if *target == domain.StatusConfirmed {
				return nil, fmt.Errorf("%w: confirmation outside the payment flow", ErrForceRequired)
			}
			return nil, fmt.Errorf("%w: %s -> %s is not available to administrators", domain.ErrInvalidTransition, b.Status, *target)
		}
		if payment != nil && *payment != b.PaymentStatus {
			return nil, fmt.Errorf("%w: payment status changes only together with a status change", domain.ErrInvalidTransition)
		}
		return nil, nil
	}
}

func parseAdminStatuses(req *models.UpdateBookingRequest) (*domain.BookingStatus, *domain.PaymentStatus, error) {
	var (
		target  *domain.BookingStatus
		payment *domain.PaymentStatus
	)
	if req.Status != nil {
		st, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: status %q", ErrInvalidInput, *req.Status)
		}
		target = &st
	}
	if req.PaymentStatus != nil {
		ps, err := domain.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: payment status %q", ErrInvalidInput, *req.PaymentStatus)
		}
		payment = &ps
	}
	return target, payment, nil
}

func validateAdminFields(req *models.UpdateBookingRequest) error {
	if req.NumberOfPeople != nil && *req.NumberOfPeople <= 0 {
		return fmt.Errorf("%w: numberOfPeople must be positive", ErrInvalidInput)
	}
	for name, v := range map[string]*int64{
		"basePriceCents":   req.BasePriceCents,
		"extrasTotalCents": req.ExtrasTotalCents,
		"depositCents":     req.DepositCents,
		"totalAmountCents": req.TotalAmountCents,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, name)
		}
	}
	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if req.CustomerEmail != nil && *req.CustomerEmail != "" {
		if _, err := mail.ParseAddress(*req.CustomerEmail); err != nil {
			return fmt.Errorf("%w: customerEmail: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

// applyAdminFields переносит поля запроса в бронирование; возвращает true, если что-то задано
func applyAdminFields(b *domain.Booking, req *models.UpdateBookingRequest) bool {
	changed := false
	setString := func(dst **string, v *string) {
		if v == nil {
			return
		}
		changed = true
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			*dst = &trimmed
			return
		}
		*dst = nil
	}
	setCents := func(dst *domain.Cents, v *int64) {
		if v == nil {
			return
		}
		changed = true
		*dst = domain.Cents(*v)
	}

	if req.NumberOfPeople != nil {
		changed = true
		b.NumberOfPeople = *req.NumberOfPeople
	}
	setCents(&b.BasePrice, req.BasePriceCents)
	setCents(&b.ExtrasTotal, req.ExtrasTotalCents)
	setCents(&b.Deposit, req.DepositCents)
	setCents(&b.TotalAmount, req.TotalAmountCents)
	setString(&b.CouponCode, req.CouponCode)
	setString(&b.CustomerName, req.CustomerName)
	setString(&b.CustomerEmail, req.CustomerEmail)
	setString(&b.CustomerPhone, req.CustomerPhone)
	setString(&b.Notes, req.Notes)

	return changed
}
