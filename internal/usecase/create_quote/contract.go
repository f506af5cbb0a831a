package create_quote

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/service/holds"
	"github.com/m04kA/SMC-BoatRental/internal/service/pricing"
)

// PriceResolver интерфейс расчёта цены
type PriceResolver interface {
	ResolvePrice(req pricing.ResolveRequest) (*pricing.PriceBreakdown, error)
}

// HoldManager интерфейс захвата холдов
type HoldManager interface {
	Acquire(ctx context.Context, draft *domain.Booking) (*holds.AcquireResult, error)
}

// ExpiryScheduler планирует отмену холда точно в момент истечения.
// Reaper остаётся основным механизмом, поэтому ошибка планирования не прерывает котировку.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID uuid.UUID, at time.Time) error
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
