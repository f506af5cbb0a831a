package pricing

import (
	"fmt"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// Resolver рассчитывает цену аренды по снимку каталога.
// Расчёт не имеет побочных эффектов и детерминирован для одного и того же снимка.
type Resolver struct {
	catalog CatalogSource
}

// NewResolver создает новый экземпляр Resolver
func NewResolver(catalog CatalogSource) *Resolver {
	return &Resolver{catalog: catalog}
}

// ResolvePrice рассчитывает цену: сезонная цена за длительность + Σ(цена опции × количество).
// Залог возвращается отдельно и в Total не входит.
func (r *Resolver) ResolvePrice(req ResolveRequest) (*PriceBreakdown, error) {
	catalog := r.catalog.Current()
	if catalog == nil {
		return nil, ErrCatalogNotLoaded
	}

	boat, ok := catalog.Boat(req.BoatID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBoatNotFound, req.BoatID)
	}

	if req.NumberOfPeople < 1 {
		return nil, ErrInvalidPeople
	}
	if req.NumberOfPeople > boat.Capacity {
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrCapacityExceeded, req.NumberOfPeople, boat.Capacity)
	}

	if !req.Duration.IsSupported() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDuration, req.Duration)
	}

	season, ok := boat.SeasonFor(req.Date)
	if !ok {
		return nil, fmt.Errorf("%w: boat %s on %s", domain.ErrNoSeasonPricing, boat.ID, req.Date.UTC().Format(domain.DateFormat))
	}

	base, ok := season.Prices[req.Duration]
	if !ok {
		return nil, fmt.Errorf("%w: boat %s has no %s price in season %s", domain.ErrInvalidDuration, boat.ID, req.Duration, season.Label)
	}

	lines, extrasTotal, err := resolveExtras(catalog, req.Extras)
	if err != nil {
		return nil, err
	}

	subtotal := base + extrasTotal

	return &PriceBreakdown{
		BoatID:         boat.ID,
		Season:         season.Label,
		Duration:       req.Duration,
		NumberOfPeople: req.NumberOfPeople,
		BasePrice:      base,
		ExtrasPrice:    extrasTotal,
		Lines:          lines,
		Deposit:        boat.Deposit,
		Subtotal:       subtotal,
		Total:          subtotal,
		CatalogVersion: catalog.Version,
	}, nil
}

// resolveExtras объединяет повторяющиеся опции и считает их стоимость
func resolveExtras(catalog *domain.Catalog, extras []ExtraRequest) ([]ExtraLine, domain.Cents, error) {
	lines := make([]ExtraLine, 0, len(extras))
	index := make(map[string]int, len(extras))
	var total domain.Cents

	for _, e := range extras {
		if e.Quantity < 1 || e.Quantity > domain.MaxExtraQuantity {
			return nil, 0, fmt.Errorf("%w: %s x%d", ErrInvalidQuantity, e.ExtraID, e.Quantity)
		}

		extra, ok := catalog.Extra(e.ExtraID)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", domain.ErrExtraNotFound, e.ExtraID)
		}

		if i, seen := index[e.ExtraID]; seen {
			lines[i].Quantity += e.Quantity
			if lines[i].Quantity > domain.MaxExtraQuantity {
				return nil, 0, fmt.Errorf("%w: %s x%d", ErrInvalidQuantity, e.ExtraID, lines[i].Quantity)
			}
			lines[i].Total = extra.UnitPrice.Mul(lines[i].Quantity)
		} else {
			index[e.ExtraID] = len(lines)
			lines = append(lines, ExtraLine{
				ExtraID:   extra.ID,
				Name:      extra.Name,
				Quantity:  e.Quantity,
				UnitPrice: extra.UnitPrice,
				Total:     extra.UnitPrice.Mul(e.Quantity),
			})
		}
		total += extra.UnitPrice.Mul(e.Quantity)
	}

	return lines, total, nil
}

// FallbackPrice ориентировочная цена по почасовой ставке лодки. Только для отображения.
func (r *Resolver) FallbackPrice(boatID string, duration domain.DurationBucket) (*DisplayEstimate, error) {
	catalog := r.catalog.Current()
	if catalog == nil {
		return nil, ErrCatalogNotLoaded
	}

	boat, ok := catalog.Boat(boatID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBoatNotFound, boatID)
	}
	if !duration.IsSupported() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDuration, duration)
	}
	if boat.HourlyRate <= 0 {
		return nil, fmt.Errorf("%w: boat %s has no hourly rate", domain.ErrNoSeasonPricing, boatID)
	}

	return &DisplayEstimate{
		BoatID:   boat.ID,
		Duration: duration,
		Amount:   boat.HourlyRate.Mul(int(duration)),
	}, nil
}
