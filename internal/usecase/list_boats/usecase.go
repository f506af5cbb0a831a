package list_boats

import (
	"context"
	"errors"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// UseCase use case для получения каталога лодок
type UseCase struct {
	catalog   CatalogSource
	estimator Estimator
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(catalog CatalogSource, estimator Estimator, logger Logger) *UseCase {
	return &UseCase{
		catalog:   catalog,
		estimator: estimator,
		logger:    logger,
	}
}

// Execute возвращает лодки текущего снимка каталога
func (uc *UseCase) Execute(_ context.Context) (*Response, error) {
	catalog := uc.catalog.Current()
	if catalog == nil {
		uc.logger.Error("ListBoats: catalog is not loaded")
		return nil, ErrCatalogUnavailable
	}

	boats := catalog.Boats()
	resp := &Response{
		CatalogVersion: catalog.Version,
		Boats:          make([]Boat, 0, len(boats)),
		Extras:         make([]Extra, 0),
	}

	for _, b := range boats {
		boat := Boat{
			ID:       b.ID,
			Name:     b.Name,
			Capacity: b.Capacity,
			Deposit:  b.Deposit,
			Seasons:  make([]Season, 0, len(b.Seasons)),
		}
		for _, s := range b.Seasons {
			boat.Seasons = append(boat.Seasons, Season{
				Label:  s.Label,
				From:   s.Period.From,
				To:     s.Period.To,
				Prices: s.Prices,
			})
		}
		boat.Estimates = uc.estimates(b.ID)
		resp.Boats = append(resp.Boats, boat)
	}

	for _, e := range catalog.Extras() {
		resp.Extras = append(resp.Extras, Extra{ID: e.ID, Name: e.Name, UnitPrice: e.UnitPrice})
	}

	return resp, nil
}

// estimates считает ориентировочные цены; лодка без почасовой ставки их не имеет
func (uc *UseCase) estimates(boatID string) map[domain.DurationBucket]domain.Cents {
	res := make(map[domain.DurationBucket]domain.Cents, len(domain.SupportedBuckets))
	for _, d := range domain.SupportedBuckets {
		est, err := uc.estimator.FallbackPrice(boatID, d)
		if err != nil {
			if !errors.Is(err, domain.ErrNoSeasonPricing) {
				uc.logger.Warn("ListBoats: no estimate for boat=%s duration=%s: %v", boatID, d, err)
			}
			return nil
		}
		res[d] = est.Amount
	}
	return res
}
