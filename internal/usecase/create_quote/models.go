package create_quote

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// ExtraRequest выбранная опция
type ExtraRequest struct {
	ExtraID  string
	Quantity int
}

// Request модель запроса котировки
type Request struct {
	BoatID         string
	StartTime      time.Time
	EndTime        time.Time
	NumberOfPeople int
	Extras         []ExtraRequest
	// ClientRef идентификатор клиента для идемпотентных повторов (опционально)
	ClientRef  *string
	CouponCode *string
	Notes      *string

	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string

	// Source по умолчанию web
	Source domain.Source
}

// ExtraLine строка котировки по опции
type ExtraLine struct {
	ExtraID   string
	Name      string
	Quantity  int
	UnitPrice domain.Cents
	Total     domain.Cents
}

// Response котировка с захваченным холдом
type Response struct {
	BookingID      uuid.UUID
	HoldID         uuid.UUID
	BoatID         string
	StartTime      time.Time
	EndTime        time.Time
	Duration       domain.DurationBucket
	Season         string
	NumberOfPeople int
	Extras         []ExtraLine
	BasePrice      domain.Cents
	ExtrasPrice    domain.Cents
	Deposit        domain.Cents
	Total          domain.Cents
	CatalogVersion int64
	ExpiresAt      time.Time
	// Reused холд уже существовал для того же клиента и интервала
	Reused bool
}
