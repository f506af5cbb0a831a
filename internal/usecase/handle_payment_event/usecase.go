package handle_payment_event

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/integrations/payments"
	"github.com/m04kA/SMC-BoatRental/internal/service/bookings"
)

// UseCase use case обработки событий платёжного шлюза
type UseCase struct {
	verifier WebhookVerifier
	bookings BookingStateMachine
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(verifier WebhookVerifier, bookings BookingStateMachine, logger Logger) *UseCase {
	return &UseCase{
		verifier: verifier,
		bookings: bookings,
		logger:   logger,
	}
}

// Execute проверяет подпись события и применяет его к бронированию.
//
// Ошибка возвращается только для неподписанных событий и внутренних сбоев,
// всё остальное подтверждается, чтобы шлюз не повторял доставку.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Подпись и разбор события
	event, err := uc.verifier.Parse(req.Payload, req.Signature)
	if err != nil {
		if errors.Is(err, payments.ErrMalformedEvent) {
			uc.logger.Warn("HandlePaymentEvent: malformed event: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		uc.logger.Warn("HandlePaymentEvent: rejected event: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	resp := &Response{EventID: event.ID, Kind: event.Kind}
	if event.Kind == payments.EventIgnored {
		uc.logger.Info("HandlePaymentEvent: ignoring event=%s type=%s", event.ID, event.Type)
		return resp, nil
	}

	// 2. Поиск бронирования: по метаданным, иначе по идентификатору платежа
	bookingID, err := uc.resolveBooking(ctx, event)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			uc.logger.Warn("HandlePaymentEvent: no booking for event=%s intent=%s", event.ID, event.IntentID)
			return resp, nil
		}
		uc.logger.Error("HandlePaymentEvent: failed to find booking for event=%s: %v", event.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	resp.BookingID = bookingID

	// 3. Переход
	var booking *domain.Booking
	switch event.Kind {
	case payments.EventSucceeded:
		booking, err = uc.bookings.ConfirmPayment(ctx, bookingID, event.IntentID)
	default:
		reason := event.FailureMessage
		if reason == "" {
			reason = domain.ReasonPaymentFailed
		}
		booking, err = uc.bookings.FailPayment(ctx, bookingID, event.IntentID, reason)
	}

	switch {
	case err == nil:
		resp.Status = string(booking.Status)
		resp.Handled = true
		uc.logger.Info("HandlePaymentEvent: event=%s %s applied, booking=%s is %s",
			event.ID, event.Kind, bookingID, booking.Status)
		return resp, nil
	case errors.Is(err, domain.ErrInvalidTransition):
		if event.Kind == payments.EventSucceeded {
			// Деньги списаны, а бронирование уже отменено: нужен ручной возврат
			uc.logger.Error("HandlePaymentEvent: payment %s succeeded for booking=%s that cannot be confirmed, refund required: %v",
				event.IntentID, bookingID, err)
		} else {
			uc.logger.Warn("HandlePaymentEvent: event=%s not applicable to booking=%s: %v", event.ID, bookingID, err)
		}
		return resp, nil
	case errors.Is(err, bookings.ErrPaymentMismatch), errors.Is(err, bookings.ErrBookingNotFound):
		uc.logger.Warn("HandlePaymentEvent: event=%s skipped for booking=%s: %v", event.ID, bookingID, err)
		return resp, nil
	}

	uc.logger.Error("HandlePaymentEvent: failed to apply event=%s to booking=%s: %v", event.ID, bookingID, err)
	return nil, fmt.Errorf("%w: %v", ErrInternal, err)
}

func (uc *UseCase) resolveBooking(ctx context.Context, event *payments.PaymentEvent) (uuid.UUID, error) {
	if event.BookingID != uuid.Nil {
		return event.BookingID, nil
	}
	if event.IntentID == "" {
		return uuid.Nil, bookings.ErrBookingNotFound
	}
	b, err := uc.bookings.GetByPaymentIntentID(ctx, event.IntentID)
	if err != nil {
		return uuid.Nil, err
	}
	return b.ID, nil
}
