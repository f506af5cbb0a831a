package list_boats

import (
	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// toPrices раскладывает цены по возрастанию длительности
func toPrices(prices map[domain.DurationBucket]domain.Cents) []PriceResponse {
	res := make([]PriceResponse, 0, len(prices))
	for _, d := range domain.SupportedBuckets {
		if p, ok := prices[d]; ok {
			res = append(res, PriceResponse{DurationHours: int(d), PriceCents: int64(p)})
		}
	}
	return res
}
