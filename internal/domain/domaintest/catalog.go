// Package domaintest provides catalog fixtures for tests.
package domaintest

import (
	"time"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// CatalogVersion is the version of the catalog returned by Catalog
const CatalogVersion = 7

// Catalog returns two boats priced all year round and two extras.
//
//	B1: capacity 6, deposit 300.00, summer (Apr 1 - Oct 31) 2h 90.00, 4h 150.00, 8h 260.00;
//	    winter (Nov 1 - Mar 31) 4h 100.00
//	B2: capacity 4, no deposit, summer only, 1h 30.00, 2h 55.00
func Catalog() *domain.Catalog {
	boats := []domain.Boat{
		{
			ID:         "B1",
			Name:       "Lagoon 40",
			Capacity:   6,
			Deposit:    30000,
			HourlyRate: 4000,
			Seasons: []domain.Season{
				{
					Label:  "summer",
					Period: domain.SeasonPeriod{From: domain.MonthDay{Month: time.April, Day: 1}, To: domain.MonthDay{Month: time.October, Day: 31}},
					Prices: map[domain.DurationBucket]domain.Cents{2: 9000, 4: 15000, 8: 26000},
				},
				{
					Label:  "winter",
					Period: domain.SeasonPeriod{From: domain.MonthDay{Month: time.November, Day: 1}, To: domain.MonthDay{Month: time.March, Day: 31}},
					Prices: map[domain.DurationBucket]domain.Cents{4: 10000},
				},
			},
		},
		{
			ID:         "B2",
			Name:       "Zodiac",
			Capacity:   4,
			HourlyRate: 2500,
			Seasons: []domain.Season{
				{
					Label:  "summer",
					Period: domain.SeasonPeriod{From: domain.MonthDay{Month: time.April, Day: 1}, To: domain.MonthDay{Month: time.October, Day: 31}},
					Prices: map[domain.DurationBucket]domain.Cents{1: 3000, 2: 5500},
				},
			},
		},
	}
	extras := []domain.Extra{
		{ID: "cooler", Name: "Cooler", UnitPrice: 500},
		{ID: "paddle", Name: "Paddle board", UnitPrice: 2500},
	}

	catalog, err := domain.NewCatalog(CatalogVersion, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), boats, extras)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Source serves a fixed catalog
type Source struct {
	Catalog *domain.Catalog
}

func (s Source) Current() *domain.Catalog { return s.Catalog }
