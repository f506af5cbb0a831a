package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/pkg/dbmetrics"
)

func TestEncodeExtras(t *testing.T) {
	s, err := encodeExtras(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = encodeExtras([]domain.ExtraSelection{{ExtraID: "cooler", Quantity: 2, UnitPrice: 500}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"extraId":"cooler","quantity":2,"unitPrice":500}]`, s)
}

func TestIsExclusionViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: "23P01"})
	assert.True(t, isExclusionViolation(wrapped))

	assert.False(t, isExclusionViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isExclusionViolation(errors.New("boom")))
}

func TestNullTime(t *testing.T) {
	assert.False(t, nullTime(time.Time{}).Valid)
	assert.True(t, nullTime(time.Now()).Valid)
}

func TestListOverlapping_Query(t *testing.T) {
	conn := &fakeConn{}
	repo := NewRepository(newFakeDB(t, conn))

	tr := domain.TimeRange{
		Start: time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 10, 14, 0, 0, 0, time.UTC),
	}

	bookings, err := repo.ListOverlapping(context.Background(), "boat-1", tr)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	require.Len(t, conn.queries, 1)
	q := conn.queries[0]
	assert.Contains(t, q.query, "FROM bookings WHERE boat_id = $1 AND status IN ($2,$3,$4) AND start_time < $5 AND end_time > $6 ORDER BY start_time ASC")
	assert.NotContains(t, q.query, "FOR UPDATE")
	assert.Equal(t, []interface{}{"boat-1", "hold", "pending_payment", "confirmed", tr.End, tr.Start}, q.args)
}

func TestListOverlapping_LocksRowsInsideTransaction(t *testing.T) {
	conn := &fakeConn{}
	db := newFakeDB(t, conn)
	repo := NewRepository(db)

	tr := domain.TimeRange{
		Start: time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC),
	}

	_, err := repo.ListOverlapping(dbmetrics.WithTx(context.Background(), fakeTx{db}), "boat-1", tr)
	require.NoError(t, err)
	_, err = repo.ListOverlapping(dbmetrics.WithReadOnlyTx(context.Background(), fakeTx{db}), "boat-1", tr)
	require.NoError(t, err)

	require.Len(t, conn.queries, 2)
	assert.True(t, strings.HasSuffix(conn.queries[0].query, "ORDER BY start_time ASC FOR UPDATE"), conn.queries[0].query)
	assert.NotContains(t, conn.queries[1].query, "FOR UPDATE")
}

func TestTransition_Query(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)
	refunded := domain.PaymentRefunded
	reason := "weather"

	tests := []struct {
		name     string
		change   domain.StatusChange
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "hold to pending payment",
			change:   domain.StatusChange{From: domain.StatusHold, To: domain.StatusPendingPayment, At: at, ConsumeHold: true},
			wantSQL:  "UPDATE bookings SET status = $1, updated_at = $2, hold_consumed_at = $3 WHERE id = $4 AND status = $5",
			wantArgs: []interface{}{domain.StatusPendingPayment, at, at, id.String(), domain.StatusHold},
		},
		{
			name:     "cancel with refund",
			change:   domain.StatusChange{From: domain.StatusConfirmed, To: domain.StatusCancelled, At: at, PaymentStatus: &refunded, Reason: &reason},
			wantSQL:  "UPDATE bookings SET status = $1, updated_at = $2, payment_status = $3, cancellation_reason = $4, cancelled_at = $5 WHERE id = $6 AND status = $7",
			wantArgs: []interface{}{domain.StatusCancelled, at, refunded, &reason, at, id.String(), domain.StatusConfirmed},
		},
		{
			name:     "confirm",
			change:   domain.StatusChange{From: domain.StatusPendingPayment, To: domain.StatusConfirmed, At: at},
			wantSQL:  "UPDATE bookings SET status = $1, updated_at = $2, confirmed_at = $3 WHERE id = $4 AND status = $5",
			wantArgs: []interface{}{domain.StatusConfirmed, at, at, id.String(), domain.StatusPendingPayment},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{}
			repo := NewRepository(newFakeDB(t, conn))

			require.NoError(t, repo.Transition(context.Background(), id, tt.change))

			require.Len(t, conn.execs, 1)
			assert.Equal(t, tt.wantSQL, conn.execs[0].query)
			assert.Equal(t, tt.wantArgs, conn.execs[0].args)
			assert.Empty(t, conn.queries)
		})
	}
}

func TestTransition_NoRowsUpdated(t *testing.T) {
	id := uuid.New()
	change := domain.StatusChange{From: domain.StatusHold, To: domain.StatusCancelled, At: time.Now().UTC()}

	tests := []struct {
		name    string
		rows    [][]driver.Value
		wantErr error
	}{
		{"status changed concurrently", [][]driver.Value{{int64(1)}}, ErrStatusConflict},
		{"booking missing", nil, ErrBookingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{
				execResult: func(string) (driver.Result, error) { return driver.RowsAffected(0), nil },
				queryRows:  func(string) ([][]driver.Value, error) { return tt.rows, nil },
			}
			repo := NewRepository(newFakeDB(t, conn))

			err := repo.Transition(context.Background(), id, change)
			assert.ErrorIs(t, err, tt.wantErr)

			require.Len(t, conn.queries, 1)
			assert.Equal(t, "SELECT 1 FROM bookings WHERE id = $1", conn.queries[0].query)
			assert.Equal(t, []interface{}{id.String()}, conn.queries[0].args)
		})
	}
}

func TestTransition_ExclusionViolation(t *testing.T) {
	conn := &fakeConn{
		execResult: func(string) (driver.Result, error) {
			return nil, &pq.Error{Code: codeExclusionViolation}
		},
	}
	repo := NewRepository(newFakeDB(t, conn))

	err := repo.Transition(context.Background(), uuid.New(), domain.StatusChange{
		From: domain.StatusCancelled,
		To:   domain.StatusHold,
		At:   time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Empty(t, conn.queries)
}

func TestUpdate_StatusConflict(t *testing.T) {
	conn := &fakeConn{
		execResult: func(string) (driver.Result, error) { return driver.RowsAffected(0), nil },
		queryRows:  func(string) ([][]driver.Value, error) { return [][]driver.Value{{int64(1)}}, nil },
	}
	repo := NewRepository(newFakeDB(t, conn))

	b := &domain.Booking{ID: uuid.New(), Status: domain.StatusPendingPayment, UpdatedAt: time.Now().UTC()}
	err := repo.Update(context.Background(), b)
	assert.ErrorIs(t, err, ErrStatusConflict)

	require.Len(t, conn.execs, 1)
	assert.True(t, strings.HasSuffix(conn.execs[0].query, "WHERE id = $13 AND status = $14"), conn.execs[0].query)
}
