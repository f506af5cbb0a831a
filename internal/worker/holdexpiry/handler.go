package holdexpiry

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Handler обработчик задач TypeHoldExpire
type Handler struct {
	reaper Reaper
	logger Logger
}

// NewHandler создает новый экземпляр Handler
func NewHandler(reaper Reaper, logger Logger) *Handler {
	return &Handler{reaper: reaper, logger: logger}
}

// ProcessTask отменяет холд, если его срок истёк. Холд, который успели оплатить или
// освободить, пропускается без ошибки.
func (h *Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	p, err := decodePayload(task)
	if err != nil {
		h.logger.Error("HoldExpiry: %v", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	expired, err := h.reaper.ReapOne(ctx, p.BookingID)
	if err != nil {
		h.logger.Warn("HoldExpiry: booking=%s will be retried: %v", p.BookingID, err)
		return err
	}

	if expired {
		h.logger.Info("HoldExpiry: booking=%s cancelled on hold expiry", p.BookingID)
	}
	return nil
}

// NewServeMux регистрирует обработчик задач
func NewServeMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeHoldExpire, h)
	return mux
}
