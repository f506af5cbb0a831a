package pricing

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// CatalogSource отдаёт текущий снимок каталога
type CatalogSource interface {
	Current() *domain.Catalog
}

// CatalogRepository интерфейс репозитория каталога
type CatalogRepository interface {
	CurrentVersion(ctx context.Context) (int64, error)
	Load(ctx context.Context, loadedAt time.Time) (*domain.Catalog, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector интерфейс метрик каталога
type MetricsCollector interface {
	SetCatalogVersion(version int64)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
