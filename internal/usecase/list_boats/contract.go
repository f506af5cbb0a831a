package list_boats

import (
	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/service/pricing"
)

// CatalogSource отдаёт текущий снимок каталога
type CatalogSource interface {
	Current() *domain.Catalog
}

// Estimator ориентировочная цена по почасовой ставке
type Estimator interface {
	FallbackPrice(boatID string, duration domain.DurationBucket) (*pricing.DisplayEstimate, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
