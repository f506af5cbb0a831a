package release_hold

import (
	"context"

	"github.com/google/uuid"
)

type HoldService interface {
	Release(ctx context.Context, holdID uuid.UUID) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
