package list_boats

import "github.com/m04kA/SMC-BoatRental/internal/domain"

// Season сезон с ценами по длительности
type Season struct {
	Label  string
	From   domain.MonthDay
	To     domain.MonthDay
	Prices map[domain.DurationBucket]domain.Cents
}

// Boat лодка каталога
type Boat struct {
	ID       string
	Name     string
	Capacity int
	Deposit  domain.Cents
	Seasons  []Season
	// Estimates ориентировочные цены по почасовой ставке; только для отображения,
	// цена котировки всегда сезонная
	Estimates map[domain.DurationBucket]domain.Cents
}

// Extra дополнительная опция
type Extra struct {
	ID        string
	Name      string
	UnitPrice domain.Cents
}

// Response каталог лодок
type Response struct {
	CatalogVersion int64
	Boats          []Boat
	Extras         []Extra
}
