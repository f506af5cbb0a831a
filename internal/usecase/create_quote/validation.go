package create_quote

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// validateRequest валидирует входные данные запроса и возвращает интервал и длительность
func validateRequest(req *Request, now time.Time) (domain.TimeRange, domain.DurationBucket, error) {
	if strings.TrimSpace(req.BoatID) == "" {
		return domain.TimeRange{}, 0, fmt.Errorf("%w: boatId is required", ErrInvalidInput)
	}

	r, err := domain.NewTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return domain.TimeRange{}, 0, err
	}
	if r.Start.Before(now) {
		return domain.TimeRange{}, 0, ErrStartInPast
	}

	bucket, err := domain.DurationBucketFromRange(r)
	if err != nil {
		return domain.TimeRange{}, 0, err
	}

	if req.NumberOfPeople < 1 {
		return domain.TimeRange{}, 0, fmt.Errorf("%w: numberOfPeople must be positive", ErrInvalidInput)
	}

	for _, e := range req.Extras {
		if strings.TrimSpace(e.ExtraID) == "" {
			return domain.TimeRange{}, 0, fmt.Errorf("%w: extra id is required", ErrInvalidInput)
		}
		if e.Quantity < 1 || e.Quantity > domain.MaxExtraQuantity {
			return domain.TimeRange{}, 0, fmt.Errorf("%w: quantity of %s must be between 1 and %d",
				ErrInvalidInput, e.ExtraID, domain.MaxExtraQuantity)
		}
	}

	if req.ClientRef != nil && len(*req.ClientRef) > domain.MaxClientRefLength {
		return domain.TimeRange{}, 0, fmt.Errorf("%w: clientRef longer than %d", ErrInvalidInput, domain.MaxClientRefLength)
	}
	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return domain.TimeRange{}, 0, fmt.Errorf("%w: notes longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if req.CustomerEmail != nil && *req.CustomerEmail != "" {
		if _, err := mail.ParseAddress(*req.CustomerEmail); err != nil {
			return domain.TimeRange{}, 0, fmt.Errorf("%w: customerEmail: %v", ErrInvalidInput, err)
		}
	}

	switch req.Source {
	case "", domain.SourceWeb, domain.SourceAdmin:
	default:
		return domain.TimeRange{}, 0, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	return r, bucket, nil
}

// emptyToNil убирает пробелы и заменяет пустую строку на nil
func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
