package holdexpiry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeHoldExpire тип задачи отмены холда
const TypeHoldExpire = "hold:expire"

// maxRetry повторы задачи; холд в любом случае уберёт периодический reaper
const maxRetry = 3

// Payload данные задачи
type Payload struct {
	BookingID uuid.UUID `json:"bookingId"`
}

// NewExpireTask создаёт задачу, которая выполнится в момент at.
// TaskID зависит только от бронирования, поэтому повторная постановка не создаёт дубликат.
func NewExpireTask(bookingID uuid.UUID, at time.Time, queue string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(Payload{BookingID: bookingID})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEncodeTask, err)
	}

	task := asynq.NewTask(TypeHoldExpire, b)
	opts := []asynq.Option{
		asynq.ProcessAt(at),
		asynq.TaskID(taskID(bookingID)),
		asynq.MaxRetry(maxRetry),
	}
	if queue != "" {
		opts = append(opts, asynq.Queue(queue))
	}

	return task, opts, nil
}

func taskID(bookingID uuid.UUID) string {
	return TypeHoldExpire + ":" + bookingID.String()
}

func decodePayload(task *asynq.Task) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.BookingID == uuid.Nil {
		return Payload{}, fmt.Errorf("%w: empty booking id", ErrInvalidPayload)
	}
	return p, nil
}
