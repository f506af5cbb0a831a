package holds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BoatRental/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BoatRental/pkg/metrics"
	"github.com/m04kA/SMC-BoatRental/pkg/ptr"
)

// Manager управляет холдами: захват, освобождение и перевод в ожидание оплаты.
//
// Захват выполняется под блокировкой лодки и в SERIALIZABLE транзакции:
// проверка пересечений и вставка не разделяются для конкурентных вызовов по одной лодке.
// Ограничение bookings_no_overlap в БД остаётся второй линией защиты.
type Manager struct {
	repo         BookingRepository
	locker       Locker
	txManager    TransactionManager
	metrics      MetricsCollector
	timeProvider TimeProvider
	logger       Logger
	ttl          time.Duration
}

// NewManager создает новый экземпляр Manager. ttl <= 0 означает domain.DefaultHoldTTL.
func NewManager(
	repo BookingRepository,
	locker Locker,
	txManager TransactionManager,
	metrics MetricsCollector,
	timeProvider TimeProvider,
	logger Logger,
	ttl time.Duration,
) *Manager {
	if ttl <= 0 {
		ttl = domain.DefaultHoldTTL
	}
	return &Manager{
		repo:         repo,
		locker:       locker,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
		ttl:          ttl,
	}
}

// TTL возвращает время жизни холда
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func boatLockKey(boatID string) string {
	return "boat:" + boatID
}

// Acquire атомарно проверяет доступность интервала и сохраняет бронирование в статусе hold.
//
// Из любых конкурентных вызовов с пересекающимися интервалами одной лодки успешен ровно один,
// остальные получают domain.ErrSlotUnavailable. Истёкшие, но ещё не убранные холды
// отменяются здесь же. Если у клиента (ClientRef) уже есть действующий холд на тот же
// интервал, он возвращается вместо нового.
func (m *Manager) Acquire(ctx context.Context, draft *domain.Booking) (*AcquireResult, error) {
	r, err := domain.NewTimeRange(draft.StartTime, draft.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	if draft.BoatID == "" {
		return nil, fmt.Errorf("%w: boat id is empty", ErrInvalidDraft)
	}

	unlock, err := m.locker.Lock(ctx, boatLockKey(draft.BoatID))
	if err != nil {
		m.metrics.ObserveHold(metrics.HoldFailed)
		m.logger.Error("Acquire: failed to lock boat=%s: %v", draft.BoatID, err)
		return nil, fmt.Errorf("%w: boat %s: %v", ErrLock, draft.BoatID, err)
	}
	defer unlock()

	now := m.timeProvider.Now().UTC()

	var (
		result  *AcquireResult
		expired []*domain.Booking
	)

	err = m.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		result, expired = nil, nil

		existing, err := m.repo.ListOverlapping(ctx, draft.BoatID, r)
		if err != nil {
			return err
		}

		// Истёкшие холды освобождают слот до проверки пересечений
		for _, b := range existing {
			if !b.HoldExpired(now) {
				continue
			}
			err := m.repo.Transition(ctx, b.ID, domain.StatusChange{
				From:   domain.StatusHold,
				To:     domain.StatusCancelled,
				At:     now,
				Reason: ptr.Ptr(domain.ReasonHoldExpired),
			})
			if err != nil {
				return err
			}
			expired = append(expired, b)
		}

		for _, b := range existing {
			if b.Status == domain.StatusHold && !b.HoldExpired(now) && b.SameRequest(draft.ClientRef, r) {
				result = &AcquireResult{Booking: b, Reused: true}
				return nil
			}
		}

		if blocking := domain.FindBlocking(existing, r, now); len(blocking) > 0 {
			return fmt.Errorf("%w: boat %s is taken by booking %s", domain.ErrSlotUnavailable, draft.BoatID, blocking[0].ID)
		}

		created, err := m.repo.Create(ctx, m.newHoldBooking(draft, r, now))
		if err != nil {
			return err
		}
		result = &AcquireResult{Booking: created}
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
			m.metrics.ObserveHold(metrics.HoldConflict)
			m.logger.Info("Acquire: slot unavailable boat=%s range=[%s, %s)",
				draft.BoatID, r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
			if errors.Is(err, domain.ErrSlotUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrSlotUnavailable, err)
		}
		m.metrics.ObserveHold(metrics.HoldFailed)
		m.logger.Error("Acquire: failed for boat=%s: %v", draft.BoatID, err)
		return nil, fmt.Errorf("%w: Acquire - boat %s: %v", ErrInternal, draft.BoatID, err)
	}

	for _, b := range expired {
		m.metrics.IncHoldExpired()
		m.metrics.ObserveTransition(string(domain.StatusHold), string(domain.StatusCancelled))
		m.logger.Info("Acquire: expired hold=%s of booking=%s reclaimed inline", b.HoldID, b.ID)
	}

	if result.Reused {
		m.metrics.ObserveHold(metrics.HoldReused)
		m.logger.Info("Acquire: reusing hold=%s for boat=%s", result.Booking.HoldID, draft.BoatID)
		return result, nil
	}

	m.metrics.ObserveHold(metrics.HoldAcquired)
	m.logger.Info("Acquire: hold=%s booking=%s boat=%s expires at %s",
		result.Booking.HoldID, result.Booking.ID, draft.BoatID, result.Booking.HoldExpiresAt.Format(time.RFC3339))
	return result, nil
}

func (m *Manager) newHoldBooking(draft *domain.Booking, r domain.TimeRange, now time.Time) *domain.Booking {
	b := *draft
	b.ID = uuid.New()
	b.StartTime = r.Start
	b.EndTime = r.End
	b.Status = domain.StatusHold
	b.PaymentStatus = domain.PaymentPending
	if b.Source == "" {
		b.Source = domain.SourceWeb
	}
	b.HoldID = uuid.New()
	b.HoldIssuedAt = now
	b.HoldExpiresAt = now.Add(m.ttl)
	b.HoldConsumedAt = nil
	b.CreatedAt = now
	b.UpdatedAt = now
	return &b
}

// Release освобождает холд по запросу клиента. Операция идемпотентна: освобождение уже
// освобождённого, истёкшего или использованного холда ничего не делает.
// Истёкший холд остаётся для reaper, который отменит его с причиной hold expired.
// Для неизвестного holdID возвращается domain.ErrHoldNotFound.
func (m *Manager) Release(ctx context.Context, holdID uuid.UUID) error {
	now := m.timeProvider.Now().UTC()
	var released *domain.Booking

	err := m.txManager.Do(ctx, func(ctx context.Context) error {
		released = nil

		b, err := m.repo.GetByHoldID(ctx, holdID)
		if err != nil {
			return err
		}
		if b.Status != domain.StatusHold || b.HoldExpired(now) {
			return nil
		}

		err = m.repo.Transition(ctx, b.ID, domain.StatusChange{
			From:   domain.StatusHold,
			To:     domain.StatusCancelled,
			At:     now,
			Reason: ptr.Ptr(domain.ReasonReleased),
		})
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			return nil
		}
		if err != nil {
			return err
		}
		released = b
		return nil
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			m.logger.Warn("Release: hold=%s not found", holdID)
			return fmt.Errorf("%w: %s", domain.ErrHoldNotFound, holdID)
		}
		m.logger.Error("Release: failed for hold=%s: %v", holdID, err)
		return fmt.Errorf("%w: Release - hold %s: %v", ErrInternal, holdID, err)
	}

	if released == nil {
		m.logger.Info("Release: hold=%s is not active, nothing to release", holdID)
		return nil
	}

	m.metrics.IncHoldReleased()
	m.metrics.ObserveTransition(string(domain.StatusHold), string(domain.StatusCancelled))
	m.logger.Info("Release: hold=%s released, booking=%s cancelled", holdID, released.ID)
	return nil
}

// Promote переводит бронирование из hold в pending_payment и помечает холд использованным.
//
// Истёкший холд отменяется и возвращается domain.ErrHoldExpired; освобождённый холд также
// даёт domain.ErrHoldExpired (клиент должен запросить котировку заново); повторный вызов
// для уже использованного холда возвращает domain.ErrHoldAlreadyConsumed.
func (m *Manager) Promote(ctx context.Context, holdID uuid.UUID) (*domain.Booking, error) {
	now := m.timeProvider.Now().UTC()

	var (
		promoted *domain.Booking
		expired  bool
	)

	err := m.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		promoted, expired = nil, false

		b, err := m.repo.GetByHoldID(ctx, holdID)
		if err != nil {
			return err
		}

		if b.HoldConsumedAt != nil {
			return domain.ErrHoldAlreadyConsumed
		}
		if b.Status != domain.StatusHold {
			return fmt.Errorf("%w: hold %s is %s", domain.ErrHoldExpired, holdID, b.Status)
		}

		if b.HoldExpired(now) {
			expired = true
			return m.repo.Transition(ctx, b.ID, domain.StatusChange{
				From:   domain.StatusHold,
				To:     domain.StatusCancelled,
				At:     now,
				Reason: ptr.Ptr(domain.ReasonHoldExpired),
			})
		}

		change := domain.StatusChange{
			From:        domain.StatusHold,
			To:          domain.StatusPendingPayment,
			At:          now,
			ConsumeHold: true,
		}
		if err := m.repo.Transition(ctx, b.ID, change); err != nil {
			return err
		}

		b.Apply(change)
		promoted = b
		return nil
	})

	switch {
	case err == nil && expired:
		m.metrics.IncHoldExpired()
		m.metrics.ObserveTransition(string(domain.StatusHold), string(domain.StatusCancelled))
		m.logger.Info("Promote: hold=%s expired, booking cancelled", holdID)
		return nil, fmt.Errorf("%w: %s", domain.ErrHoldExpired, holdID)
	case err == nil:
		m.metrics.ObserveTransition(string(domain.StatusHold), string(domain.StatusPendingPayment))
		m.logger.Info("Promote: hold=%s consumed, booking=%s is pending payment", holdID, promoted.ID)
		return promoted, nil
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		m.logger.Warn("Promote: hold=%s not found", holdID)
		return nil, fmt.Errorf("%w: %s", domain.ErrHoldNotFound, holdID)
	case errors.Is(err, domain.ErrHoldAlreadyConsumed):
		m.logger.Warn("Promote: hold=%s already consumed", holdID)
		return nil, err
	case errors.Is(err, domain.ErrHoldExpired), errors.Is(err, bookingRepo.ErrStatusConflict):
		m.logger.Info("Promote: hold=%s is no longer active: %v", holdID, err)
		return nil, fmt.Errorf("%w: %s", domain.ErrHoldExpired, holdID)
	default:
		m.logger.Error("Promote: failed for hold=%s: %v", holdID, err)
		return nil, fmt.Errorf("%w: Promote - hold %s: %v", ErrInternal, holdID, err)
	}
}
