package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour int) time.Time {
	return time.Date(2025, time.July, 10, hour, 0, 0, 0, time.UTC)
}

func TestNewTimeRange(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*3600)

	r, err := NewTimeRange(time.Date(2025, 7, 10, 12, 0, 0, 0, madrid), time.Date(2025, 7, 10, 16, 0, 0, 0, madrid))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, r.Start.Location())
	assert.Equal(t, at(10), r.Start)
	assert.Equal(t, at(14), r.End)

	_, err = NewTimeRange(at(14), at(10))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = NewTimeRange(at(10), at(10))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = NewTimeRange(time.Time{}, at(10))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestTimeRange_Overlaps(t *testing.T) {
	base := TimeRange{Start: at(10), End: at(14)}

	tests := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"identical", TimeRange{at(10), at(14)}, true},
		{"partial tail", TimeRange{at(12), at(16)}, true},
		{"partial head", TimeRange{at(8), at(11)}, true},
		{"contained", TimeRange{at(11), at(12)}, true},
		{"containing", TimeRange{at(9), at(15)}, true},
		{"touching end", TimeRange{at(14), at(16)}, false},
		{"touching start", TimeRange{at(8), at(10)}, false},
		{"disjoint", TimeRange{at(16), at(18)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestFindBlocking(t *testing.T) {
	now := at(9)
	r := TimeRange{Start: at(10), End: at(14)}

	confirmed := &Booking{ID: uuid.New(), StartTime: at(12), EndTime: at(16), Status: StatusConfirmed}
	cancelled := &Booking{ID: uuid.New(), StartTime: at(10), EndTime: at(14), Status: StatusCancelled}
	liveHold := &Booking{ID: uuid.New(), StartTime: at(8), EndTime: at(11), Status: StatusHold, HoldExpiresAt: now.Add(time.Minute)}
	staleHold := &Booking{ID: uuid.New(), StartTime: at(10), EndTime: at(12), Status: StatusHold, HoldExpiresAt: now}
	adjacent := &Booking{ID: uuid.New(), StartTime: at(14), EndTime: at(16), Status: StatusPendingPayment}

	blocking := FindBlocking([]*Booking{confirmed, cancelled, liveHold, staleHold, adjacent}, r, now)

	assert.ElementsMatch(t, []*Booking{confirmed, liveHold}, blocking)
}

func TestDurationBucketFromRange(t *testing.T) {
	d, err := DurationBucketFromRange(TimeRange{at(10), at(14)})
	require.NoError(t, err)
	assert.Equal(t, DurationBucket(4), d)
	assert.Equal(t, "4h", d.String())

	_, err = DurationBucketFromRange(TimeRange{at(10), at(15)})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = DurationBucketFromRange(TimeRange{at(10), at(10).Add(90 * time.Minute)})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParseDurationBucket(t *testing.T) {
	d, err := ParseDurationBucket("6h")
	require.NoError(t, err)
	assert.Equal(t, DurationBucket(6), d)

	_, err = ParseDurationBucket("5h")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ParseDurationBucket("abc")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestCents_String(t *testing.T) {
	assert.Equal(t, "120.00", Cents(12000).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "-3.50", Cents(-350).String())
}
