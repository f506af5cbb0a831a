package create_payment_intent

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/integrations/payments"
)

// HoldManager интерфейс перевода холда в ожидание оплаты
type HoldManager interface {
	Promote(ctx context.Context, holdID uuid.UUID) (*domain.Booking, error)
}

// PaymentGateway интерфейс платёжного шлюза
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string, at time.Time) error
}

// BookingStateMachine отмена бронирования, если платёж не удалось создать
type BookingStateMachine interface {
	FailPayment(ctx context.Context, id uuid.UUID, intentID, reason string) (*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector интерфейс метрик платёжного шлюза
type MetricsCollector interface {
	IncGatewayError()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
