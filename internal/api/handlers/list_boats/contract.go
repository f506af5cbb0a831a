package list_boats

import (
	"context"

	listBoats "github.com/m04kA/SMC-BoatRental/internal/usecase/list_boats"
)

type ListBoatsUseCase interface {
	Execute(ctx context.Context) (*listBoats.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
