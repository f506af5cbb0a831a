package check_availability

import (
	"fmt"
	"time"

	checkAvailability "github.com/m04kA/SMC-BoatRental/internal/usecase/check_availability"
)

// CheckAvailabilityRequest HTTP request model
type CheckAvailabilityRequest struct {
	BoatID    string `json:"boatId"`
	StartTime string `json:"startTime"` // RFC3339
	EndTime   string `json:"endTime"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	BoatID    string `json:"boatId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CheckAvailabilityRequest) ToUseCaseRequest() (*checkAvailability.Request, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	return &checkAvailability.Request{
		BoatID:    r.BoatID,
		StartTime: start,
		EndTime:   end,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		BoatID:    resp.BoatID,
		StartTime: resp.StartTime.Format(time.RFC3339),
		EndTime:   resp.EndTime.Format(time.RFC3339),
		Available: resp.Available,
	}
}
