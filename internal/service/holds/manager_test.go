package holds

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/infra/lock"
	"github.com/m04kA/SMC-BoatRental/internal/infra/storage/booking/bookingtest"
	"github.com/m04kA/SMC-BoatRental/pkg/metrics"
	"github.com/m04kA/SMC-BoatRental/pkg/ptr"
)

type mockTimeProvider struct {
	mu  sync.Mutex
	now time.Time
}

func (m *mockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

type mockMetrics struct {
	mu       sync.Mutex
	holds    map[string]int
	released int
	expired  int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{holds: make(map[string]int)}
}

func (m *mockMetrics) ObserveHold(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holds[result]++
}

func (m *mockMetrics) IncHoldReleased() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released++
}

func (m *mockMetrics) IncHoldExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired++
}

func (m *mockMetrics) ObserveTransition(string, string) {}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("redis down")
}

var baseTime = time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return time.Date(2025, 7, 10, hour, 0, 0, 0, time.UTC)
}

type fixture struct {
	repo    *bookingtest.Memory
	clock   *mockTimeProvider
	metrics *mockMetrics
	manager *Manager
}

func newFixture() *fixture {
	f := &fixture{
		repo:    bookingtest.NewMemory(),
		clock:   &mockTimeProvider{now: baseTime},
		metrics: newMockMetrics(),
	}
	f.manager = NewManager(f.repo, lock.NewLocalLocker(), bookingtest.TxManager{}, f.metrics, f.clock, nopLogger{}, 30*time.Minute)
	return f
}

func draft(boatID string, start, end time.Time) *domain.Booking {
	return &domain.Booking{
		BoatID:         boatID,
		StartTime:      start,
		EndTime:        end,
		Duration:       domain.DurationBucket(end.Sub(start) / time.Hour),
		Season:         "mid",
		NumberOfPeople: 4,
		BasePrice:      15000,
		TotalAmount:    15000,
	}
}

func TestAcquire_CreatesHold(t *testing.T) {
	f := newFixture()

	res, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)

	assert.False(t, res.Reused)
	assert.Equal(t, domain.StatusHold, res.Booking.Status)
	assert.Equal(t, domain.PaymentPending, res.Booking.PaymentStatus)
	assert.Equal(t, domain.SourceWeb, res.Booking.Source)
	assert.NotEqual(t, uuid.Nil, res.Booking.HoldID)
	assert.Equal(t, baseTime, res.Hold().IssuedAt)
	assert.Equal(t, baseTime.Add(30*time.Minute), res.Hold().ExpiresAt)
	assert.Equal(t, 1, f.metrics.holds[metrics.HoldAcquired])
	assert.Len(t, f.repo.All(), 1)
}

func TestAcquire_OverlapIsRejected(t *testing.T) {
	f := newFixture()

	_, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)

	_, err = f.manager.Acquire(context.Background(), draft("B1", at(12), at(16)))
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.Equal(t, 1, f.metrics.holds[metrics.HoldConflict])

	// соседний интервал не пересекается
	_, err = f.manager.Acquire(context.Background(), draft("B1", at(14), at(16)))
	assert.NoError(t, err)

	// другая лодка
	_, err = f.manager.Acquire(context.Background(), draft("B2", at(12), at(16)))
	assert.NoError(t, err)
}

func TestAcquire_ConcurrentExactlyOneWins(t *testing.T) {
	f := newFixture()

	const callers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// все интервалы пересекаются с [11:00, 12:00)
			_, err := f.manager.Acquire(context.Background(), draft("B1", at(8+i%4), at(12+i%4)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrSlotUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, conflicts)
	assertNoOverlap(t, f.repo.All())
}

func TestAcquire_ConcurrentDifferentBoats(t *testing.T) {
	f := newFixture()
	boats := []string{"B1", "B2", "B3", "B4"}

	var wg sync.WaitGroup
	errs := make([]error, len(boats))
	for i, boat := range boats {
		wg.Add(1)
		go func(i int, boat string) {
			defer wg.Done()
			_, errs[i] = f.manager.Acquire(context.Background(), draft(boat, at(10), at(14)))
		}(i, boat)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, f.repo.All(), len(boats))
}

func TestAcquire_DifferentBoatNotBlockedByHeldLock(t *testing.T) {
	locker := lock.NewLocalLocker()
	f := newFixture()
	f.manager.locker = locker

	unlock, err := locker.Lock(context.Background(), boatLockKey("B1"))
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = f.manager.Acquire(ctx, draft("B2", at(10), at(14)))
	assert.NoError(t, err)
}

func TestAcquire_ExpiredHoldIsReclaimed(t *testing.T) {
	f := newFixture()

	first, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)

	f.clock.Advance(29 * time.Minute)
	_, err = f.manager.Acquire(context.Background(), draft("B1", at(12), at(16)))
	require.ErrorIs(t, err, domain.ErrSlotUnavailable)

	f.clock.Advance(time.Minute)
	second, err := f.manager.Acquire(context.Background(), draft("B1", at(12), at(16)))
	require.NoError(t, err)
	assert.NotEqual(t, first.Booking.ID, second.Booking.ID)

	old, err := f.repo.GetByID(context.Background(), first.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, old.Status)
	assert.Equal(t, domain.ReasonHoldExpired, ptr.Value(old.CancellationReason))
	assert.Equal(t, 1, f.metrics.expired)

	assertNoOverlap(t, f.repo.All())
}

func TestAcquire_IdempotentRetry(t *testing.T) {
	f := newFixture()

	d := draft("B1", at(10), at(14))
	d.ClientRef = ptr.Ptr("client-1")
	first, err := f.manager.Acquire(context.Background(), d)
	require.NoError(t, err)

	retry := draft("B1", at(10), at(14))
	retry.ClientRef = ptr.Ptr("client-1")
	second, err := f.manager.Acquire(context.Background(), retry)
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Equal(t, first.Booking.HoldID, second.Booking.HoldID)
	assert.Len(t, f.repo.All(), 1)

	// другой клиент или другой интервал не переиспользуют холд
	other := draft("B1", at(10), at(14))
	other.ClientRef = ptr.Ptr("client-2")
	_, err = f.manager.Acquire(context.Background(), other)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

	shifted := draft("B1", at(11), at(15))
	shifted.ClientRef = ptr.Ptr("client-1")
	_, err = f.manager.Acquire(context.Background(), shifted)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
}

func TestAcquire_LockFailure(t *testing.T) {
	f := newFixture()
	f.manager.locker = failingLocker{}

	_, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	assert.ErrorIs(t, err, ErrLock)
	assert.Empty(t, f.repo.All())
}

func TestAcquire_InvalidRange(t *testing.T) {
	f := newFixture()

	_, err := f.manager.Acquire(context.Background(), draft("B1", at(14), at(10)))
	assert.ErrorIs(t, err, ErrInvalidDraft)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestAcquire_StoreErrorIsNotSwallowed(t *testing.T) {
	f := newFixture()
	f.repo.FailNext = errors.New("connection reset")

	_, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 1, f.metrics.holds[metrics.HoldFailed])
}

func TestRelease_Idempotent(t *testing.T) {
	f := newFixture()

	a, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)
	b, err := f.manager.Acquire(context.Background(), draft("B1", at(14), at(16)))
	require.NoError(t, err)

	require.NoError(t, f.manager.Release(context.Background(), a.Booking.HoldID))
	require.NoError(t, f.manager.Release(context.Background(), a.Booking.HoldID))
	assert.Equal(t, 1, f.metrics.released)

	released, err := f.repo.GetByID(context.Background(), a.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, released.Status)
	assert.Equal(t, domain.ReasonReleased, ptr.Value(released.CancellationReason))

	other, err := f.repo.GetByID(context.Background(), b.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHold, other.Status)

	// слот освобождается сразу
	_, err = f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	assert.NoError(t, err)
}

func TestRelease_ExpiredHoldIsNoop(t *testing.T) {
	f := newFixture()

	a, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.manager.Release(context.Background(), a.Booking.HoldID))

	stored, err := f.repo.GetByID(context.Background(), a.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHold, stored.Status)
	assert.Nil(t, stored.CancellationReason)
	assert.Equal(t, 0, f.metrics.released)
	assert.Equal(t, 0, f.metrics.expired)

	// reclaimed as expired by the next acquisition, not as released
	_, err = f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)
	stored, err = f.repo.GetByID(context.Background(), a.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Equal(t, domain.ReasonHoldExpired, ptr.Value(stored.CancellationReason))
	assert.Equal(t, 0, f.metrics.released)
	assert.Equal(t, 1, f.metrics.expired)
}

func TestAcquire_FailedAttemptDoesNotCountInlineExpiry(t *testing.T) {
	f := newFixture()

	_, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(12)))
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	_, err = f.manager.Acquire(context.Background(), draft("B1", at(12), at(14)))
	require.NoError(t, err)

	// first hold is past its TTL, second is still live
	f.clock.Advance(15 * time.Minute)
	_, err = f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.ErrorIs(t, err, domain.ErrSlotUnavailable)

	assert.Equal(t, 0, f.metrics.expired)
	assert.Equal(t, 1, f.metrics.holds[metrics.HoldConflict])
}

func TestAcquire_AfterHoldReaped(t *testing.T) {
	f := newFixture()

	a, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)

	// the reaper cancels the hold outside of the manager
	f.clock.Advance(31 * time.Minute)
	require.NoError(t, f.repo.Transition(context.Background(), a.Booking.ID, domain.StatusChange{
		From:   domain.StatusHold,
		To:     domain.StatusCancelled,
		At:     f.clock.Now(),
		Reason: ptr.Ptr(domain.ReasonHoldExpired),
	}))

	b, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)
	assert.NotEqual(t, a.Booking.ID, b.Booking.ID)
	assert.Equal(t, domain.StatusHold, b.Booking.Status)
	assert.Equal(t, 0, f.metrics.expired)
	assert.Equal(t, 2, f.metrics.holds[metrics.HoldAcquired])
}

func TestRelease_UnknownHold(t *testing.T) {
	f := newFixture()
	err := f.manager.Release(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrHoldNotFound)
}

func TestPromote(t *testing.T) {
	f := newFixture()

	a, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	b, err := f.manager.Promote(context.Background(), a.Booking.HoldID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, b.Status)
	require.NotNil(t, b.HoldConsumedAt)

	stored, err := f.repo.GetByID(context.Background(), a.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, stored.Status)
	assert.True(t, stored.Hold().IsConsumed())

	_, err = f.manager.Promote(context.Background(), a.Booking.HoldID)
	assert.ErrorIs(t, err, domain.ErrHoldAlreadyConsumed)

	// release after promotion is a no-op
	require.NoError(t, f.manager.Release(context.Background(), a.Booking.HoldID))
	stored, err = f.repo.GetByID(context.Background(), a.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, stored.Status)

	// pending_payment keeps blocking the slot after the hold TTL
	f.clock.Advance(time.Hour)
	_, err = f.manager.Acquire(context.Background(), draft("B1", at(12), at(16)))
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
}

func TestPromote_Expired(t *testing.T) {
	f := newFixture()

	a, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	_, err = f.manager.Promote(context.Background(), a.Booking.HoldID)
	assert.ErrorIs(t, err, domain.ErrHoldExpired)

	stored, err := f.repo.GetByID(context.Background(), a.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Equal(t, 1, f.metrics.expired)
}

func TestPromote_Released(t *testing.T) {
	f := newFixture()

	a, err := f.manager.Acquire(context.Background(), draft("B1", at(10), at(14)))
	require.NoError(t, err)
	require.NoError(t, f.manager.Release(context.Background(), a.Booking.HoldID))

	_, err = f.manager.Promote(context.Background(), a.Booking.HoldID)
	assert.ErrorIs(t, err, domain.ErrHoldExpired)

	_, err = f.manager.Promote(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrHoldNotFound)
}

func assertNoOverlap(t *testing.T, bookings []*domain.Booking) {
	t.Helper()
	for i, a := range bookings {
		for _, b := range bookings[i+1:] {
			if a.BoatID != b.BoatID || !a.IsActive() || !b.IsActive() {
				continue
			}
			assert.Falsef(t, a.Range().Overlaps(b.Range()), "bookings %s and %s overlap", a.ID, b.ID)
		}
	}
}
