package create_payment_intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/integrations/payments"
)

// UseCase use case для создания платежа по холду
type UseCase struct {
	holdManager  HoldManager
	gateway      PaymentGateway
	bookingRepo  BookingRepository
	bookings     BookingStateMachine
	txManager    TransactionManager
	metrics      MetricsCollector
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	holdManager HoldManager,
	gateway PaymentGateway,
	bookingRepo BookingRepository,
	bookings BookingStateMachine,
	txManager TransactionManager,
	metrics MetricsCollector,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		holdManager:  holdManager,
		gateway:      gateway,
		bookingRepo:  bookingRepo,
		bookings:     bookings,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute переводит холд в pending_payment и создаёт платёж в шлюзе.
//
// Переход фиксируется до обращения к шлюзу, блокировка лодки на время сетевого вызова
// не удерживается. Если шлюз вернул ошибку, бронирование отменяется со статусом оплаты
// failed и возвращается domain.ErrPaymentGateway.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreatePaymentIntent: hold=%s", req.HoldID)

	// 1. Валидация входных данных
	if req.HoldID == uuid.Nil {
		return nil, fmt.Errorf("%w: holdId is required", ErrInvalidInput)
	}

	// 2. hold -> pending_payment
	booking, err := uc.holdManager.Promote(ctx, req.HoldID)
	if err != nil {
		if isHoldError(err) {
			uc.logger.Warn("CreatePaymentIntent: hold=%s cannot be promoted: %v", req.HoldID, err)
			return nil, err
		}
		uc.logger.Error("CreatePaymentIntent: failed to promote hold=%s: %v", req.HoldID, err)
		return nil, fmt.Errorf("%w: failed to promote hold: %v", ErrInternal, err)
	}

	// 3. Платёж в шлюзе
	intent, err := uc.gateway.CreateIntent(ctx, payments.IntentRequest{
		BookingID:   booking.ID,
		HoldID:      booking.HoldID,
		BoatID:      booking.BoatID,
		AmountCents: int64(booking.TotalAmount),
		Description: fmt.Sprintf("Boat %s, %s, %s", booking.BoatID,
			booking.StartTime.Format("2006-01-02 15:04"), booking.Duration),
		Email: booking.CustomerEmail,
	})
	if err != nil {
		uc.metrics.IncGatewayError()
		uc.logger.Error("CreatePaymentIntent: gateway failed for booking=%s: %v", booking.ID, err)

		if _, cancelErr := uc.bookings.FailPayment(context.WithoutCancel(ctx), booking.ID, "", domain.ReasonGatewayError); cancelErr != nil {
			uc.logger.Error("CreatePaymentIntent: failed to cancel booking=%s after gateway error: %v", booking.ID, cancelErr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}

	// 4. Сохраняем идентификатор платежа для сопоставления с webhook
	now := uc.timeProvider.Now().UTC()
	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		return uc.bookingRepo.SetPaymentIntent(ctx, booking.ID, intent.ID, now)
	})
	if err != nil {
		// Webhook всё равно найдёт бронирование по booking_id из метаданных
		uc.logger.Error("CreatePaymentIntent: failed to store intent=%s on booking=%s: %v", intent.ID, booking.ID, err)
	}

	uc.logger.Info("CreatePaymentIntent: intent=%s created for booking=%s", intent.ID, booking.ID)

	return &Response{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		BookingID:       booking.ID,
		Amount:          domain.Cents(intent.AmountCents),
		Currency:        intent.Currency,
	}, nil
}

func isHoldError(err error) bool {
	return errors.Is(err, domain.ErrHoldNotFound) ||
		errors.Is(err, domain.ErrHoldExpired) ||
		errors.Is(err, domain.ErrHoldAlreadyConsumed)
}
