package holdexpiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Scheduler ставит отложенные задачи отмены холдов в очередь asynq
type Scheduler struct {
	client Enqueuer
	queue  string
	logger Logger
}

// NewScheduler создает новый экземпляр Scheduler
func NewScheduler(client Enqueuer, queue string, logger Logger) *Scheduler {
	return &Scheduler{client: client, queue: queue, logger: logger}
}

// ScheduleExpiry планирует отмену холда бронирования на момент at.
// Повторное планирование для того же бронирования ничего не делает.
func (s *Scheduler) ScheduleExpiry(ctx context.Context, bookingID uuid.UUID, at time.Time) error {
	task, opts, err := NewExpireTask(bookingID, at, s.queue)
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			s.logger.Info("ScheduleExpiry: task for booking=%s already scheduled", bookingID)
			return nil
		}
		return fmt.Errorf("%w: booking %s: %v", ErrEnqueue, bookingID, err)
	}

	s.logger.Info("ScheduleExpiry: task=%s queue=%s for booking=%s at %s",
		info.ID, info.Queue, bookingID, at.Format(time.RFC3339))
	return nil
}

// Nop не планирует ничего; используется, когда очередь задач выключена
type Nop struct{}

func (Nop) ScheduleExpiry(context.Context, uuid.UUID, time.Time) error { return nil }
