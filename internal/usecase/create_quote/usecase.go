package create_quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/service/holds"
	"github.com/m04kA/SMC-BoatRental/internal/service/pricing"
)

// UseCase use case для расчёта котировки с захватом холда
type UseCase struct {
	resolver     PriceResolver
	holdManager  HoldManager
	scheduler    ExpiryScheduler
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	resolver PriceResolver,
	holdManager HoldManager,
	scheduler ExpiryScheduler,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		resolver:     resolver,
		holdManager:  holdManager,
		scheduler:    scheduler,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute рассчитывает цену и атомарно захватывает интервал лодки.
// Котировка без холда не возвращается: если слот занят, возвращается domain.ErrSlotUnavailable.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateQuote: boat=%s, range=[%s, %s), people=%d, extras=%d",
		req.BoatID, req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339), req.NumberOfPeople, len(req.Extras))

	now := uc.timeProvider.Now().UTC()

	// 1. Валидация входных данных
	r, bucket, err := validateRequest(req, now)
	if err != nil {
		uc.logger.Warn("CreateQuote: validation failed: %v", err)
		return nil, err
	}
	boatID := strings.TrimSpace(req.BoatID)

	// 2. Расчёт цены по текущему снимку каталога
	extras := make([]pricing.ExtraRequest, 0, len(req.Extras))
	for _, e := range req.Extras {
		extras = append(extras, pricing.ExtraRequest{ExtraID: strings.TrimSpace(e.ExtraID), Quantity: e.Quantity})
	}

	price, err := uc.resolver.ResolvePrice(pricing.ResolveRequest{
		BoatID:         boatID,
		Date:           r.Start,
		Duration:       bucket,
		NumberOfPeople: req.NumberOfPeople,
		Extras:         extras,
	})
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrCatalogNotLoaded):
			uc.logger.Error("CreateQuote: catalog is not loaded")
			return nil, ErrCatalogUnavailable
		case errors.Is(err, pricing.ErrInvalidPeople), errors.Is(err, pricing.ErrInvalidQuantity):
			uc.logger.Warn("CreateQuote: pricing rejected request: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Warn("CreateQuote: failed to price boat=%s: %v", boatID, err)
		return nil, err
	}

	// 3. Захват холда; бронирование сохраняется в статусе hold
	source := req.Source
	if source == "" {
		source = domain.SourceWeb
	}
	draft := &domain.Booking{
		BoatID:         boatID,
		StartTime:      r.Start,
		EndTime:        r.End,
		Duration:       bucket,
		Season:         price.Season,
		NumberOfPeople: req.NumberOfPeople,
		SelectedExtras: price.Selections(),
		BasePrice:      price.BasePrice,
		ExtrasTotal:    price.ExtrasPrice,
		Deposit:        price.Deposit,
		TotalAmount:    price.Total,
		CouponCode:     emptyToNil(req.CouponCode),
		CatalogVersion: price.CatalogVersion,
		Status:         domain.StatusDraft,
		PaymentStatus:  domain.PaymentPending,
		Source:         source,
		ClientRef:      emptyToNil(req.ClientRef),
		CustomerName:   emptyToNil(req.CustomerName),
		CustomerEmail:  emptyToNil(req.CustomerEmail),
		CustomerPhone:  emptyToNil(req.CustomerPhone),
		Notes:          emptyToNil(req.Notes),
	}

	result, err := uc.holdManager.Acquire(ctx, draft)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotUnavailable):
			uc.logger.Info("CreateQuote: boat=%s is not available", boatID)
			return nil, err
		case errors.Is(err, holds.ErrLock):
			uc.logger.Warn("CreateQuote: boat=%s is locked: %v", boatID, err)
			return nil, fmt.Errorf("%w: %v", ErrBusy, err)
		}
		uc.logger.Error("CreateQuote: failed to acquire hold for boat=%s: %v", boatID, err)
		return nil, fmt.Errorf("%w: failed to acquire hold: %v", ErrInternal, err)
	}

	// 4. Точная отмена по истечении; при ошибке холд уберёт reaper
	if !result.Reused {
		if err := uc.scheduler.ScheduleExpiry(ctx, result.Booking.ID, result.Booking.HoldExpiresAt); err != nil {
			uc.logger.Warn("CreateQuote: failed to schedule expiry of booking=%s: %v", result.Booking.ID, err)
		}
	}

	uc.logger.Info("CreateQuote: hold=%s booking=%s total=%s reused=%t",
		result.Booking.HoldID, result.Booking.ID, result.Booking.TotalAmount, result.Reused)

	return toResponse(result, price), nil
}

// toResponse строит котировку по сохранённому бронированию: при повторном запросе
// возвращаются суммы исходного холда, а не пересчитанные
func toResponse(result *holds.AcquireResult, price *pricing.PriceBreakdown) *Response {
	b := result.Booking

	names := make(map[string]string, len(price.Lines))
	for _, l := range price.Lines {
		names[l.ExtraID] = l.Name
	}
	lines := make([]ExtraLine, 0, len(b.SelectedExtras))
	for _, e := range b.SelectedExtras {
		lines = append(lines, ExtraLine{
			ExtraID:   e.ExtraID,
			Name:      names[e.ExtraID],
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
			Total:     e.UnitPrice.Mul(e.Quantity),
		})
	}

	return &Response{
		BookingID:      b.ID,
		HoldID:         b.HoldID,
		BoatID:         b.BoatID,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		Duration:       b.Duration,
		Season:         b.Season,
		NumberOfPeople: b.NumberOfPeople,
		Extras:         lines,
		BasePrice:      b.BasePrice,
		ExtrasPrice:    b.ExtrasTotal,
		Deposit:        b.Deposit,
		Total:          b.TotalAmount,
		CatalogVersion: b.CatalogVersion,
		ExpiresAt:      b.HoldExpiresAt,
		Reused:         result.Reused,
	}
}
