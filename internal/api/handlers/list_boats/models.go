package list_boats

import (
	listBoats "github.com/m04kA/SMC-BoatRental/internal/usecase/list_boats"
)

// PriceResponse цена за длительность
type PriceResponse struct {
	DurationHours int   `json:"durationHours"`
	PriceCents    int64 `json:"priceCents"`
}

// SeasonResponse сезон лодки
type SeasonResponse struct {
	Label  string          `json:"label"`
	From   string          `json:"from"` // "04-01"
	To     string          `json:"to"`
	Prices []PriceResponse `json:"prices"`
}

// BoatResponse лодка каталога
type BoatResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Capacity     int              `json:"capacity"`
	DepositCents int64            `json:"depositCents"`
	Seasons      []SeasonResponse `json:"seasons"`
	Estimates    []PriceResponse  `json:"estimates,omitempty"`
}

// ExtraResponse дополнительная опция
type ExtraResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// BoatsResponse HTTP response model
type BoatsResponse struct {
	CatalogVersion int64           `json:"catalogVersion"`
	Boats          []BoatResponse  `json:"boats"`
	Extras         []ExtraResponse `json:"extras"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *listBoats.Response) *BoatsResponse {
	out := &BoatsResponse{
		CatalogVersion: resp.CatalogVersion,
		Boats:          make([]BoatResponse, 0, len(resp.Boats)),
		Extras:         make([]ExtraResponse, 0, len(resp.Extras)),
	}

	for _, b := range resp.Boats {
		boat := BoatResponse{
			ID:           b.ID,
			Name:         b.Name,
			Capacity:     b.Capacity,
			DepositCents: int64(b.Deposit),
			Seasons:      make([]SeasonResponse, 0, len(b.Seasons)),
		}
		for _, s := range b.Seasons {
			season := SeasonResponse{
				Label: s.Label,
				From:  s.From.String(),
				To:    s.To.String(),
			}
			season.Prices = toPrices(s.Prices)
			boat.Seasons = append(boat.Seasons, season)
		}
		if len(b.Estimates) > 0 {
			boat.Estimates = toPrices(b.Estimates)
		}
		out.Boats = append(out.Boats, boat)
	}

	for _, e := range resp.Extras {
		out.Extras = append(out.Extras, ExtraResponse{ID: e.ID, Name: e.Name, UnitPriceCents: int64(e.UnitPrice)})
	}

	return out
}
