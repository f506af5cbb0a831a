package reaper

import (
	"context"

	"github.com/m04kA/SMC-BoatRental/internal/usecase/reap_expired_holds"
)

// HoldReaper проход по истёкшим холдам
type HoldReaper interface {
	Execute(ctx context.Context) (*reap_expired_holds.Result, error)
}

// CatalogRefresher перечитывает каталог цен
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
