package create_payment_intent

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// Request модель запроса на создание платежа
type Request struct {
	HoldID uuid.UUID
}

// Response созданный платёж
type Response struct {
	PaymentIntentID string
	// ClientSecret передаётся клиенту для подтверждения платежа на стороне браузера
	ClientSecret string
	BookingID    uuid.UUID
	Amount       domain.Cents
	Currency     string
}
