package check_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/domain/domaintest"
	"github.com/m04kA/SMC-BoatRental/internal/infra/storage/booking/bookingtest"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var now = time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return time.Date(2025, 7, 11, hour, 0, 0, 0, time.UTC)
}

func put(repo *bookingtest.Memory, status domain.BookingStatus, start, end time.Time, expiresAt time.Time) {
	repo.Put(&domain.Booking{
		ID:            uuid.New(),
		BoatID:        "B1",
		StartTime:     start,
		EndTime:       end,
		Status:        status,
		PaymentStatus: domain.PaymentPending,
		HoldID:        uuid.New(),
		HoldExpiresAt: expiresAt,
	})
}

func newUseCase(repo *bookingtest.Memory) *UseCase {
	return NewUseCase(repo, domaintest.Source{Catalog: domaintest.Catalog()}, bookingtest.TxManager{}, fixedTime{now}, nopLogger{})
}

func TestExecute(t *testing.T) {
	repo := bookingtest.NewMemory()
	put(repo, domain.StatusConfirmed, at(10), at(12), now)
	put(repo, domain.StatusHold, at(14), at(16), now.Add(time.Minute))
	put(repo, domain.StatusHold, at(16), at(18), now.Add(-time.Minute))
	put(repo, domain.StatusCancelled, at(18), at(20), now)

	uc := newUseCase(repo)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		available bool
		conflicts int
	}{
		{name: "overlaps confirmed", start: at(11), end: at(13), available: false, conflicts: 1},
		{name: "touches confirmed", start: at(12), end: at(14), available: true},
		{name: "overlaps live hold", start: at(15), end: at(17), available: false, conflicts: 1},
		{name: "expired hold", start: at(16), end: at(18), available: true},
		{name: "cancelled", start: at(18), end: at(20), available: true},
		{name: "spans two", start: at(9), end: at(17), available: false, conflicts: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := uc.Execute(context.Background(), &Request{BoatID: "B1", StartTime: tt.start, EndTime: tt.end})
			require.NoError(t, err)
			assert.Equal(t, tt.available, res.Available)
			assert.Equal(t, tt.conflicts, res.Conflicts)
		})
	}
}

func TestExecute_OtherBoatIsFree(t *testing.T) {
	repo := bookingtest.NewMemory()
	put(repo, domain.StatusConfirmed, at(10), at(12), now)

	res, err := newUseCase(repo).Execute(context.Background(), &Request{BoatID: "B2", StartTime: at(10), EndTime: at(12)})
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestExecute_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	res, err := newUseCase(bookingtest.NewMemory()).Execute(context.Background(), &Request{
		BoatID:    "B1",
		StartTime: time.Date(2025, 7, 11, 12, 0, 0, 0, loc),
		EndTime:   time.Date(2025, 7, 11, 14, 0, 0, 0, loc),
	})
	require.NoError(t, err)
	assert.Equal(t, at(10), res.StartTime)
	assert.Equal(t, time.UTC, res.StartTime.Location())
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "empty boat", req: &Request{StartTime: at(10), EndTime: at(12)}, wantErr: ErrInvalidInput},
		{name: "unknown boat", req: &Request{BoatID: "B9", StartTime: at(10), EndTime: at(12)}, wantErr: domain.ErrBoatNotFound},
		{name: "reversed range", req: &Request{BoatID: "B1", StartTime: at(12), EndTime: at(10)}, wantErr: domain.ErrInvalidTimeRange},
		{name: "empty range", req: &Request{BoatID: "B1", StartTime: at(12), EndTime: at(12)}, wantErr: domain.ErrInvalidTimeRange},
	}

	uc := newUseCase(bookingtest.NewMemory())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_CatalogNotLoaded(t *testing.T) {
	uc := NewUseCase(bookingtest.NewMemory(), domaintest.Source{}, bookingtest.TxManager{}, fixedTime{now}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BoatID: "B1", StartTime: at(10), EndTime: at(12)})
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestExecute_StoreError(t *testing.T) {
	repo := bookingtest.NewMemory()
	repo.FailNext = errors.New("connection reset")

	_, err := newUseCase(repo).Execute(context.Background(), &Request{BoatID: "B1", StartTime: at(10), EndTime: at(12)})
	assert.ErrorIs(t, err, ErrInternal)
}
