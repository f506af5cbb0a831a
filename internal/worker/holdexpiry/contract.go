package holdexpiry

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Enqueuer реализуется *asynq.Client
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Reaper отмена одного истёкшего холда
type Reaper interface {
	ReapOne(ctx context.Context, bookingID uuid.UUID) (bool, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
