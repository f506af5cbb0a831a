package reap_expired_holds

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)
}

// BookingStateMachine отмена истёкших холдов
type BookingStateMachine interface {
	Expire(ctx context.Context, id uuid.UUID) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector интерфейс метрик reaper'а
type MetricsCollector interface {
	ObserveReaperRun(result string)
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
