package list_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BoatRental/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// from и to принимаются в RFC3339 или как дата YYYY-MM-DD.
func ToServiceRequest(q url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{}

	if v := q.Get("boatId"); v != "" {
		req.BoatID = &v
	}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}

	if v := q.Get("from"); v != "" {
		from, err := parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("invalid from: %w", err)
		}
		req.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("invalid to: %w", err)
		}
		req.To = &to
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("invalid limit %q", v)
		}
		req.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("invalid offset %q", v)
		}
		req.Offset = offset
	}

	return req, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
