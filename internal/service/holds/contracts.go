package holds

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByHoldID(ctx context.Context, holdID uuid.UUID) (*domain.Booking, error)
	ListOverlapping(ctx context.Context, boatID string, r domain.TimeRange) ([]*domain.Booking, error)
	Transition(ctx context.Context, id uuid.UUID, change domain.StatusChange) error
}

// Locker взаимное исключение по лодке
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector интерфейс метрик холдов
type MetricsCollector interface {
	ObserveHold(result string)
	IncHoldReleased()
	IncHoldExpired()
	ObserveTransition(from, to string)
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
