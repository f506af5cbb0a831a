package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListOverlapping(ctx context.Context, boatID string, r domain.TimeRange) ([]*domain.Booking, error)
}

// CatalogSource источник текущего каталога лодок
type CatalogSource interface {
	Current() *domain.Catalog
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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
