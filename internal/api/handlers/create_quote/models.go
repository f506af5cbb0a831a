package create_quote

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	createQuote "github.com/m04kA/SMC-BoatRental/internal/usecase/create_quote"
)

// ExtraRequest выбранная опция
type ExtraRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// CreateQuoteRequest HTTP request model
type CreateQuoteRequest struct {
	BoatID         string         `json:"boatId"`
	StartTime      string         `json:"startTime"` // RFC3339
	EndTime        string         `json:"endTime"`
	NumberOfPeople int            `json:"numberOfPeople"`
	Extras         []ExtraRequest `json:"extras,omitempty"`
	ClientRef      *string        `json:"clientRef,omitempty"`
	CouponCode     *string        `json:"couponCode,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	CustomerName   *string        `json:"customerName,omitempty"`
	CustomerEmail  *string        `json:"customerEmail,omitempty"`
	CustomerPhone  *string        `json:"customerPhone,omitempty"`
}

// ExtraLineResponse строка котировки по опции
type ExtraLineResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

// QuoteResponse котировка
type QuoteResponse struct {
	BookingID        uuid.UUID           `json:"bookingId"`
	BoatID           string              `json:"boatId"`
	StartTime        string              `json:"startTime"`
	EndTime          string              `json:"endTime"`
	DurationHours    int                 `json:"durationHours"`
	Season           string              `json:"season"`
	NumberOfPeople   int                 `json:"numberOfPeople"`
	Extras           []ExtraLineResponse `json:"extras"`
	BasePriceCents   int64               `json:"basePriceCents"`
	ExtrasPriceCents int64               `json:"extrasPriceCents"`
	DepositCents     int64               `json:"depositCents"`
	TotalCents       int64               `json:"totalCents"`
	CatalogVersion   int64               `json:"catalogVersion"`
	ExpiresAt        string              `json:"expiresAt"`
}

// CreateQuoteResponse HTTP response model
type CreateQuoteResponse struct {
	Quote  QuoteResponse `json:"quote"`
	HoldID uuid.UUID     `json:"holdId"`
	Reused bool          `json:"reused"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateQuoteRequest) ToUseCaseRequest() (*createQuote.Request, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	extras := make([]createQuote.ExtraRequest, 0, len(r.Extras))
	for _, e := range r.Extras {
		extras = append(extras, createQuote.ExtraRequest{ExtraID: e.ID, Quantity: e.Quantity})
	}

	return &createQuote.Request{
		BoatID:         r.BoatID,
		StartTime:      start,
		EndTime:        end,
		NumberOfPeople: r.NumberOfPeople,
		Extras:         extras,
		ClientRef:      r.ClientRef,
		CouponCode:     r.CouponCode,
		Notes:          r.Notes,
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail,
		CustomerPhone:  r.CustomerPhone,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createQuote.Response) *CreateQuoteResponse {
	extras := make([]ExtraLineResponse, 0, len(resp.Extras))
	for _, e := range resp.Extras {
		extras = append(extras, ExtraLineResponse{
			ID:             e.ExtraID,
			Name:           e.Name,
			Quantity:       e.Quantity,
			UnitPriceCents: int64(e.UnitPrice),
			TotalCents:     int64(e.Total),
		})
	}

	return &CreateQuoteResponse{
		Quote: QuoteResponse{
			BookingID:        resp.BookingID,
			BoatID:           resp.BoatID,
			StartTime:        resp.StartTime.Format(time.RFC3339),
			EndTime:          resp.EndTime.Format(time.RFC3339),
			DurationHours:    int(resp.Duration),
			Season:           resp.Season,
			NumberOfPeople:   resp.NumberOfPeople,
			Extras:           extras,
			BasePriceCents:   int64(resp.BasePrice),
			ExtrasPriceCents: int64(resp.ExtrasPrice),
			DepositCents:     int64(resp.Deposit),
			TotalCents:       int64(resp.Total),
			CatalogVersion:   resp.CatalogVersion,
			ExpiresAt:        resp.ExpiresAt.Format(time.RFC3339),
		},
		HoldID: resp.HoldID,
		Reused: resp.Reused,
	}
}
