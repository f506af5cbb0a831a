package create_payment_intent

import (
	"github.com/google/uuid"

	createPaymentIntent "github.com/m04kA/SMC-BoatRental/internal/usecase/create_payment_intent"
)

// CreatePaymentIntentRequest HTTP request model
type CreatePaymentIntentRequest struct {
	HoldID string `json:"holdId"`
}

// PaymentIntentResponse HTTP response model
type PaymentIntentResponse struct {
	PaymentIntentID string    `json:"paymentIntentId"`
	ClientSecret    string    `json:"clientSecret"`
	BookingID       uuid.UUID `json:"bookingId"`
	AmountCents     int64     `json:"amountCents"`
	Currency        string    `json:"currency"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreatePaymentIntentRequest) ToUseCaseRequest() (*createPaymentIntent.Request, error) {
	holdID, err := uuid.Parse(r.HoldID)
	if err != nil {
		return nil, err
	}
	return &createPaymentIntent.Request{HoldID: holdID}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createPaymentIntent.Response) *PaymentIntentResponse {
	return &PaymentIntentResponse{
		PaymentIntentID: resp.PaymentIntentID,
		ClientSecret:    resp.ClientSecret,
		BookingID:       resp.BookingID,
		AmountCents:     int64(resp.Amount),
		Currency:        resp.Currency,
	}
}
