package pricing

import (
	"time"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// ExtraRequest выбранная опция и количество
type ExtraRequest struct {
	ExtraID  string
	Quantity int
}

// ResolveRequest входные данные для расчёта цены
type ResolveRequest struct {
	BoatID string
	// Date день начала аренды; сезон определяется по календарному дню в UTC
	Date           time.Time
	Duration       domain.DurationBucket
	NumberOfPeople int
	Extras         []ExtraRequest
}

// ExtraLine строка расчёта по одной опции
type ExtraLine struct {
	ExtraID   string
	Name      string
	Quantity  int
	UnitPrice domain.Cents
	Total     domain.Cents
}

// PriceBreakdown результат расчёта. Total не включает залог.
type PriceBreakdown struct {
	BoatID         string
	Season         string
	Duration       domain.DurationBucket
	NumberOfPeople int
	BasePrice      domain.Cents
	ExtrasPrice    domain.Cents
	Lines          []ExtraLine
	Deposit        domain.Cents
	Subtotal       domain.Cents
	Total          domain.Cents
	CatalogVersion int64
}

// Selections возвращает опции в виде, который сохраняется в бронировании
func (p *PriceBreakdown) Selections() []domain.ExtraSelection {
	res := make([]domain.ExtraSelection, 0, len(p.Lines))
	for _, l := range p.Lines {
		res = append(res, domain.ExtraSelection{
			ExtraID:   l.ExtraID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return res
}

// DisplayEstimate ориентировочная цена для отображения, когда у лодки нет сезона на дату.
// Намеренно не совместима с PriceBreakdown: создать по ней холд или платёж нельзя.
type DisplayEstimate struct {
	BoatID   string
	Duration domain.DurationBucket
	Amount   domain.Cents
}
