package check_availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// UseCase use case для проверки доступности лодки на интервал
type UseCase struct {
	bookingRepo  BookingRepository
	catalog      CatalogSource
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalog CatalogSource,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		catalog:      catalog,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute выполняет проверку доступности.
// Холды с истёкшим сроком, ещё не убранные reaper'ом, слот не занимают.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	boatID := strings.TrimSpace(req.BoatID)
	if boatID == "" {
		return nil, fmt.Errorf("%w: boatId is required", ErrInvalidInput)
	}
	r, err := domain.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		uc.logger.Warn("CheckAvailability: invalid range for boat=%s: %v", boatID, err)
		return nil, err
	}

	// 2. Лодка должна существовать в каталоге
	catalog := uc.catalog.Current()
	if catalog == nil {
		uc.logger.Error("CheckAvailability: catalog is not loaded")
		return nil, ErrCatalogUnavailable
	}
	if _, ok := catalog.Boat(boatID); !ok {
		uc.logger.Warn("CheckAvailability: boat=%s not found", boatID)
		return nil, fmt.Errorf("%w: %s", domain.ErrBoatNotFound, boatID)
	}

	// 3. Читаем пересекающиеся бронирования
	var existing []*domain.Booking
	err = uc.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		existing, err = uc.bookingRepo.ListOverlapping(ctx, boatID, r)
		return err
	})
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to list bookings for boat=%s: %v", boatID, err)
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}

	blocking := domain.FindBlocking(existing, r, uc.timeProvider.Now().UTC())

	uc.logger.Info("CheckAvailability: boat=%s range=[%s, %s) conflicts=%d",
		boatID, r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339), len(blocking))

	return &Response{
		BoatID:    boatID,
		StartTime: r.Start,
		EndTime:   r.End,
		Available: len(blocking) == 0,
		Conflicts: len(blocking),
	}, nil
}
