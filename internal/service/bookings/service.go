package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BoatRental/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BoatRental/internal/integrations/notifier"
	"github.com/m04kA/SMC-BoatRental/internal/service/bookings/models"
)

// publishTimeout ограничивает публикацию события после коммита
const publishTimeout = 5 * time.Second

// Service машина состояний бронирования: подтверждение и отмена по событиям платёжного
// шлюза, истечение холдов и административные изменения.
//
// Каждый переход выполняется в транзакции с условием на текущий статус,
// события публикуются только после коммита.
type Service struct {
	repo            BookingRepository
	txManager       TransactionManager
	publisher       EventPublisher
	metrics         MetricsCollector
	timeProvider    TimeProvider
	logger          Logger
	defaultPageSize int
	maxPageSize     int
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	repo BookingRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics MetricsCollector,
	timeProvider TimeProvider,
	logger Logger,
	defaultPageSize, maxPageSize int,
) *Service {
	return &Service{
		repo:            repo,
		txManager:       txManager,
		publisher:       publisher,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	var booking *domain.Booking
	err := s.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.mapError("GetByID", id, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetByPaymentIntentID находит бронирование по идентификатору payment intent
func (s *Service) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.repo.GetByPaymentIntentID(ctx, intentID)
		return err
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByPaymentIntentID: no booking for intent=%s", intentID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByPaymentIntentID: repository error for intent=%s: %v", intentID, err)
		return nil, fmt.Errorf("%w: GetByPaymentIntentID - repository error: %v", ErrInternal, err)
	}
	return booking, nil
}

// List возвращает бронирования по фильтру, отсортированные по времени начала
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter(s.defaultPageSize, s.maxPageSize)
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	var bookings []*domain.Booking
	err = s.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		bookings, err = s.repo.List(ctx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return &models.BookingListResponse{
		Bookings: models.FromDomainBookingList(bookings),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

// decision решает, какой переход выполнить для загруженного бронирования.
// nil без ошибки означает, что бронирование уже в нужном состоянии.
type decision func(b *domain.Booking, now time.Time) (*domain.StatusChange, error)

// editFunc правит загруженное бронирование в транзакции перехода до принятия решения
type editFunc func(ctx context.Context, b *domain.Booking, now time.Time) error

// transition загружает бронирование под блокировкой строки, применяет решение и сохраняет
// переход. Возвращает бронирование после перехода и сам переход (nil, если ничего не менялось).
func (s *Service) transition(ctx context.Context, op string, id uuid.UUID, decide decision) (*domain.Booking, *domain.StatusChange, error) {
	return s.transitionWith(ctx, op, id, nil, decide)
}

// transitionWith как transition, но перед решением вызывает edit в той же транзакции
func (s *Service) transitionWith(ctx context.Context, op string, id uuid.UUID, edit editFunc, decide decision) (*domain.Booking, *domain.StatusChange, error) {
	now := s.timeProvider.Now().UTC()

	var (
		booking *domain.Booking
		change  *domain.StatusChange
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, change = nil, nil

		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if edit != nil {
			if err := edit(ctx, b, now); err != nil {
				return err
			}
		}
		c, err := decide(b, now)
		if err != nil {
			return err
		}
		if c != nil {
			if err := s.repo.Transition(ctx, b.ID, *c); err != nil {
				return err
			}
			b.Apply(*c)
		}
		booking, change = b, c
		return nil
	})
	if err != nil {
		return nil, nil, s.mapError(op, id, err)
	}

	if change != nil {
		s.afterTransition(ctx, op, booking, *change)
	}
	return booking, change, nil
}

// afterTransition учитывает переход в метриках и публикует событие для терминальных статусов
func (s *Service) afterTransition(ctx context.Context, op string, b *domain.Booking, change domain.StatusChange) {
	s.metrics.ObserveTransition(string(change.From), string(change.To))
	s.logger.Info("%s: booking=%s %s -> %s", op, b.ID, change.From, change.To)

	var eventType string
	switch change.To {
	case domain.StatusConfirmed:
		eventType = notifier.EventBookingConfirmed
	case domain.StatusCancelled:
		eventType = notifier.EventBookingCancelled
	default:
		return
	}

	// Событие публикуется и при отменённом запросе: переход уже закоммичен
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, notifier.NewBookingEvent(eventType, b, change.At)); err != nil {
		s.logger.Warn("%s: failed to publish %s for booking=%s: %v", op, eventType, b.ID, err)
	}
}

// mapError переводит ошибки репозитория и решений в ошибки сервиса
func (s *Service) mapError(op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("%s: booking id=%s not found", op, id)
		return ErrBookingNotFound
	case errors.Is(err, bookingRepo.ErrStatusConflict):
		s.logger.Warn("%s: booking id=%s changed concurrently", op, id)
		return fmt.Errorf("%w: %s - booking %s", ErrConcurrentUpdate, op, id)
	case errors.Is(err, bookingRepo.ErrSlotNotAvailable):
		s.logger.Warn("%s: booking id=%s overlaps an active booking", op, id)
		return fmt.Errorf("%w: %v", domain.ErrSlotUnavailable, err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, ErrForceRequired),
		errors.Is(err, ErrPaymentMismatch),
		errors.Is(err, ErrNotEditable),
		errors.Is(err, ErrRangeNotEditable),
		errors.Is(err, ErrInvalidInput):
		s.logger.Warn("%s: booking id=%s rejected: %v", op, id, err)
		return err
	}

	s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
