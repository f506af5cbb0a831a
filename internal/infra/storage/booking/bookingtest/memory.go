// Package bookingtest provides an in-memory bookings store with the same error semantics
// as the Postgres repository, including the no-overlap exclusion constraint.
package bookingtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/infra/storage/booking"
)

// Memory is safe for concurrent use. Stored bookings are copied on the way in and out.
type Memory struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*domain.Booking

	// FailNext, when set, is returned by the next call of any method and then cleared
	FailNext error
}

func NewMemory() *Memory {
	return &Memory{bookings: make(map[uuid.UUID]*domain.Booking)}
}

// Put stores b as is, bypassing the exclusion check.
func (m *Memory) Put(b *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = clone(b)
}

// All returns every stored booking ordered by start time.
func (m *Memory) All() []*domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]*domain.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		res = append(res, clone(b))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StartTime.Before(res[j].StartTime) })
	return res
}

func (m *Memory) failed() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *Memory) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return nil, err
	}

	if b.IsActive() && m.overlapsActive(b.ID, b.BoatID, b.Range()) {
		return nil, booking.ErrSlotNotAvailable
	}

	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	m.bookings[b.ID] = clone(b)
	return b, nil
}

func (m *Memory) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return m.find(func(b *domain.Booking) bool { return b.ID == id })
}

func (m *Memory) GetByHoldID(ctx context.Context, holdID uuid.UUID) (*domain.Booking, error) {
	return m.find(func(b *domain.Booking) bool { return b.HoldID == holdID })
}

func (m *Memory) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	return m.find(func(b *domain.Booking) bool {
		return b.PaymentIntentID != nil && *b.PaymentIntentID == intentID
	})
}

func (m *Memory) find(match func(b *domain.Booking) bool) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return nil, err
	}

	for _, b := range m.bookings {
		if match(b) {
			return clone(b), nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func (m *Memory) ListOverlapping(ctx context.Context, boatID string, r domain.TimeRange) ([]*domain.Booking, error) {
	return m.list(func(b *domain.Booking) bool {
		return b.BoatID == boatID && b.IsActive() && b.Range().Overlaps(r)
	}, 0)
}

func (m *Memory) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	return m.list(func(b *domain.Booking) bool { return b.HoldExpired(now) }, limit)
}

func (m *Memory) List(ctx context.Context, f domain.BookingsFilter) ([]*domain.Booking, error) {
	res, err := m.list(func(b *domain.Booking) bool {
		if f.BoatID != nil && b.BoatID != *f.BoatID {
			return false
		}
		if f.Status != nil && b.Status != *f.Status {
			return false
		}
		if f.From != nil && !b.EndTime.After(*f.From) {
			return false
		}
		if f.To != nil && !b.StartTime.Before(*f.To) {
			return false
		}
		return true
	}, 0)
	if err != nil {
		return nil, err
	}

	if f.Offset > 0 {
		if f.Offset >= len(res) {
			return []*domain.Booking{}, nil
		}
		res = res[f.Offset:]
	}
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

func (m *Memory) list(match func(b *domain.Booking) bool, limit int) ([]*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return nil, err
	}

	res := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if match(b) {
			res = append(res, clone(b))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StartTime.Before(res[j].StartTime) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *Memory) Transition(ctx context.Context, id uuid.UUID, change domain.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}

	b, ok := m.bookings[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if b.Status != change.From {
		return booking.ErrStatusConflict
	}
	if domain.IsActiveStatus(change.To) && !b.IsActive() && m.overlapsActive(b.ID, b.BoatID, b.Range()) {
		return booking.ErrSlotNotAvailable
	}

	b.Apply(change)
	return nil
}

func (m *Memory) Update(ctx context.Context, u *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}

	b, ok := m.bookings[u.ID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if b.Status != u.Status {
		return booking.ErrStatusConflict
	}

	b.NumberOfPeople = u.NumberOfPeople
	b.BasePrice = u.BasePrice
	b.ExtrasTotal = u.ExtrasTotal
	b.Deposit = u.Deposit
	b.TotalAmount = u.TotalAmount
	b.CouponCode = u.CouponCode
	b.PaymentStatus = u.PaymentStatus
	b.CustomerName = u.CustomerName
	b.CustomerEmail = u.CustomerEmail
	b.CustomerPhone = u.CustomerPhone
	b.Notes = u.Notes
	b.UpdatedAt = u.UpdatedAt
	return nil
}

func (m *Memory) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failed(); err != nil {
		return err
	}

	b, ok := m.bookings[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	b.PaymentIntentID = &intentID
	b.UpdatedAt = at
	return nil
}

// overlapsActive mirrors bookings_no_overlap: expiry is not considered, only the status
func (m *Memory) overlapsActive(self uuid.UUID, boatID string, r domain.TimeRange) bool {
	for _, other := range m.bookings {
		if other.ID != self && other.BoatID == boatID && other.IsActive() && other.Range().Overlaps(r) {
			return true
		}
	}
	return false
}

func clone(b *domain.Booking) *domain.Booking {
	c := *b
	if b.SelectedExtras != nil {
		c.SelectedExtras = append([]domain.ExtraSelection(nil), b.SelectedExtras...)
	}
	return &c
}

// TxManager runs fn directly; Memory calls are atomic one by one.
type TxManager struct{}

func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func (TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
