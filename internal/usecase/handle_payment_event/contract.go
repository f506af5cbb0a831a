package handle_payment_event

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/integrations/payments"
)

// WebhookVerifier проверка подписи и разбор события шлюза
type WebhookVerifier interface {
	Parse(payload []byte, signatureHeader string) (*payments.PaymentEvent, error)
}

// BookingStateMachine переходы бронирования по результатам оплаты
type BookingStateMachine interface {
	ConfirmPayment(ctx context.Context, id uuid.UUID, intentID string) (*domain.Booking, error)
	FailPayment(ctx context.Context, id uuid.UUID, intentID, reason string) (*domain.Booking, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
