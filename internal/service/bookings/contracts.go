package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	Transition(ctx context.Context, id uuid.UUID, change domain.StatusChange) error
	Update(ctx context.Context, booking *domain.Booking) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикует события жизненного цикла бронирования
type EventPublisher interface {
	Publish(ctx context.Context, event notifier.BookingEvent) error
}

// MetricsCollector интерфейс метрик переходов статусов
type MetricsCollector interface {
	ObserveTransition(from, to string)
	IncHoldExpired()
	IncAdminOverride(to string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

// Now возвращает текущее время в UTC
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
