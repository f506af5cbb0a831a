package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

func md(m time.Month, d int) domain.MonthDay { return domain.MonthDay{Month: m, Day: d} }

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()

	b1 := domain.Boat{
		ID:         "B1",
		Name:       "Lagoon 40",
		Capacity:   6,
		Deposit:    30000,
		HourlyRate: 4000,
		Seasons: []domain.Season{
			{
				Label:  "low",
				Period: domain.SeasonPeriod{From: md(time.October, 1), To: md(time.April, 30)},
				Prices: map[domain.DurationBucket]domain.Cents{2: 7000, 4: 12000, 8: 20000},
			},
			{
				Label:  "mid",
				Period: domain.SeasonPeriod{From: md(time.May, 1), To: md(time.July, 14)},
				Prices: map[domain.DurationBucket]domain.Cents{2: 9000, 4: 15000, 8: 26000},
			},
			{
				Label:  "high",
				Period: domain.SeasonPeriod{From: md(time.July, 15), To: md(time.September, 30)},
				Prices: map[domain.DurationBucket]domain.Cents{4: 18000},
			},
		},
	}
	b2 := domain.Boat{
		ID:       "B2",
		Name:     "Zodiac",
		Capacity: 4,
		Seasons: []domain.Season{
			{
				Label:  "summer",
				Period: domain.SeasonPeriod{From: md(time.June, 1), To: md(time.August, 31)},
				Prices: map[domain.DurationBucket]domain.Cents{1: 3000},
			},
		},
	}

	catalog, err := domain.NewCatalog(3, time.Now(), []domain.Boat{b1, b2}, []domain.Extra{
		{ID: "cooler", Name: "Cooler", UnitPrice: 500},
		{ID: "paddle", Name: "Paddle board", UnitPrice: 2500},
	})
	require.NoError(t, err)
	return catalog
}

func day(m time.Month, d, hour int) time.Time {
	return time.Date(2025, m, d, hour, 0, 0, 0, time.UTC)
}

func TestResolvePrice_MidSeasonWithExtra(t *testing.T) {
	r := NewResolver(NewStaticProvider(testCatalog(t)))

	p, err := r.ResolvePrice(ResolveRequest{
		BoatID:         "B1",
		Date:           day(time.July, 10, 10),
		Duration:       4,
		NumberOfPeople: 4,
		Extras:         []ExtraRequest{{ExtraID: "cooler", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "mid", p.Season)
	assert.Equal(t, domain.Cents(15000), p.BasePrice)
	assert.Equal(t, domain.Cents(500), p.ExtrasPrice)
	assert.Equal(t, domain.Cents(15500), p.Subtotal)
	assert.Equal(t, domain.Cents(15500), p.Total)
	assert.Equal(t, domain.Cents(30000), p.Deposit)
	assert.Equal(t, int64(3), p.CatalogVersion)
	assert.Equal(t, []domain.ExtraSelection{{ExtraID: "cooler", Quantity: 1, UnitPrice: 500}}, p.Selections())
}

func TestResolvePrice_Deterministic(t *testing.T) {
	r := NewResolver(NewStaticProvider(testCatalog(t)))
	req := ResolveRequest{BoatID: "B1", Date: day(time.July, 15, 9), Duration: 4, NumberOfPeople: 4}

	first, err := r.ResolvePrice(req)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.ResolvePrice(req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "high", first.Season)
	assert.Equal(t, domain.Cents(18000), first.Total)
}

func TestResolvePrice_WrappingSeason(t *testing.T) {
	r := NewResolver(NewStaticProvider(testCatalog(t)))

	p, err := r.ResolvePrice(ResolveRequest{BoatID: "B1", Date: day(time.January, 2, 10), Duration: 8, NumberOfPeople: 2})
	require.NoError(t, err)
	assert.Equal(t, "low", p.Season)
	assert.Equal(t, domain.Cents(20000), p.Total)
}

func TestResolvePrice_MergesRepeatedExtras(t *testing.T) {
	r := NewResolver(NewStaticProvider(testCatalog(t)))

	p, err := r.ResolvePrice(ResolveRequest{
		BoatID:         "B1",
		Date:           day(time.May, 3, 10),
		Duration:       2,
		NumberOfPeople: 2,
		Extras: []ExtraRequest{
			{ExtraID: "cooler", Quantity: 1},
			{ExtraID: "paddle", Quantity: 2},
			{ExtraID: "cooler", Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, p.Lines, 2)
	assert.Equal(t, 3, p.Lines[0].Quantity)
	assert.Equal(t, domain.Cents(1500), p.Lines[0].Total)
	assert.Equal(t, domain.Cents(1500+5000), p.ExtrasPrice)
	assert.Equal(t, domain.Cents(9000+6500), p.Total)
}

func TestResolvePrice_Errors(t *testing.T) {
	r := NewResolver(NewStaticProvider(testCatalog(t)))

	tests := []struct {
		name    string
		req     ResolveRequest
		wantErr error
	}{
		{
			name:    "unknown boat",
			req:     ResolveRequest{BoatID: "B9", Date: day(time.July, 10, 10), Duration: 4, NumberOfPeople: 1},
			wantErr: domain.ErrBoatNotFound,
		},
		{
			name:    "no season on date",
			req:     ResolveRequest{BoatID: "B2", Date: day(time.December, 10, 10), Duration: 1, NumberOfPeople: 1},
			wantErr: domain.ErrNoSeasonPricing,
		},
		{
			name:    "bucket missing in season",
			req:     ResolveRequest{BoatID: "B1", Date: day(time.August, 10, 10), Duration: 2, NumberOfPeople: 1},
			wantErr: domain.ErrInvalidDuration,
		},
		{
			name:    "unsupported bucket",
			req:     ResolveRequest{BoatID: "B1", Date: day(time.August, 10, 10), Duration: 5, NumberOfPeople: 1},
			wantErr: domain.ErrInvalidDuration,
		},
		{
			name:    "too many people",
			req:     ResolveRequest{BoatID: "B1", Date: day(time.July, 10, 10), Duration: 4, NumberOfPeople: 7},
			wantErr: domain.ErrCapacityExceeded,
		},
		{
			name:    "no people",
			req:     ResolveRequest{BoatID: "B1", Date: day(time.July, 10, 10), Duration: 4},
			wantErr: ErrInvalidPeople,
		},
		{
			name: "unknown extra",
			req: ResolveRequest{BoatID: "B1", Date: day(time.July, 10, 10), Duration: 4, NumberOfPeople: 1,
				Extras: []ExtraRequest{{ExtraID: "jetski", Quantity: 1}}},
			wantErr: domain.ErrExtraNotFound,
		},
		{
			name: "zero quantity",
			req: ResolveRequest{BoatID: "B1", Date: day(time.July, 10, 10), Duration: 4, NumberOfPeople: 1,
				Extras: []ExtraRequest{{ExtraID: "cooler", Quantity: 0}}},
			wantErr: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ResolvePrice(tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolvePrice_CatalogNotLoaded(t *testing.T) {
	r := NewResolver(NewStaticProvider(nil))

	_, err := r.ResolvePrice(ResolveRequest{BoatID: "B1"})
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)
}

func TestFallbackPrice(t *testing.T) {
	r := NewResolver(NewStaticProvider(testCatalog(t)))

	est, err := r.FallbackPrice("B1", 4)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(16000), est.Amount)

	_, err = r.FallbackPrice("B2", 4)
	assert.ErrorIs(t, err, domain.ErrNoSeasonPricing)

	_, err = r.FallbackPrice("B1", 7)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}
