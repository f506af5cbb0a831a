package reap_expired_holds

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/service/bookings"
)

// defaultBatchSize используется, если размер пачки не задан
const defaultBatchSize = 100

// UseCase use case отмены холдов с истёкшим сроком.
// Параллельные запуски безопасны: каждый переход проверяет текущий статус.
type UseCase struct {
	bookingRepo  BookingRepository
	bookings     BookingStateMachine
	txManager    TransactionManager
	metrics      MetricsCollector
	timeProvider TimeProvider
	logger       Logger
	batchSize    int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	bookings BookingStateMachine,
	txManager TransactionManager,
	metrics MetricsCollector,
	timeProvider TimeProvider,
	logger Logger,
	batchSize int,
) *UseCase {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		bookings:     bookings,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
		batchSize:    batchSize,
	}
}

// Execute отменяет до batchSize холдов, срок которых истёк. Ошибка отдельного холда
// не прерывает проход.
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	now := uc.timeProvider.Now().UTC()

	ids := make([]uuid.UUID, 0)
	err := uc.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		expired, err := uc.bookingRepo.ListExpiredHolds(ctx, now, uc.batchSize)
		if err != nil {
			return err
		}
		for _, b := range expired {
			ids = append(ids, b.ID)
		}
		return nil
	})
	if err != nil {
		uc.metrics.ObserveReaperRun(RunFailed)
		uc.logger.Error("ReapExpiredHolds: failed to list expired holds: %v", err)
		return nil, fmt.Errorf("%w: failed to list expired holds: %v", ErrInternal, err)
	}

	res := &Result{Found: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		expired, err := uc.ReapOne(ctx, id)
		switch {
		case err != nil:
			res.Failed++
		case expired:
			res.Expired++
		default:
			res.Skipped++
		}
	}

	switch {
	case res.Failed == 0:
		uc.metrics.ObserveReaperRun(RunOK)
	case res.Failed < res.Found:
		uc.metrics.ObserveReaperRun(RunPartial)
	default:
		uc.metrics.ObserveReaperRun(RunFailed)
	}

	if res.Found > 0 {
		uc.logger.Info("ReapExpiredHolds: found=%d expired=%d skipped=%d failed=%d",
			res.Found, res.Expired, res.Skipped, res.Failed)
	}
	return res, nil
}

// ReapOne отменяет холд одного бронирования, если его срок истёк.
// Возвращает false, если отменять нечего.
func (uc *UseCase) ReapOne(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	expired, err := uc.bookings.Expire(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) || errors.Is(err, bookings.ErrConcurrentUpdate) {
			return false, nil
		}
		uc.logger.Error("ReapExpiredHolds: failed to expire booking=%s: %v", bookingID, err)
		return false, err
	}
	return expired, nil
}
