package list_bookings

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToServiceRequest(t *testing.T) {
	t.Run("all filters", func(t *testing.T) {
		q := url.Values{
			"boatId": {"B1"},
			"status": {"confirmed"},
			"from":   {"2030-07-01"},
			"to":     {"2030-07-02T10:00:00+02:00"},
			"limit":  {"20"},
			"offset": {"40"},
		}

		req, err := ToServiceRequest(q)
		require.NoError(t, err)
		assert.Equal(t, "B1", *req.BoatID)
		assert.Equal(t, "confirmed", *req.Status)
		assert.Equal(t, time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC), *req.From)
		assert.Equal(t, time.Date(2030, 7, 2, 8, 0, 0, 0, time.UTC), *req.To)
		assert.Equal(t, 20, req.Limit)
		assert.Equal(t, 40, req.Offset)
	})

	t.Run("empty query", func(t *testing.T) {
		req, err := ToServiceRequest(url.Values{})
		require.NoError(t, err)
		assert.Nil(t, req.BoatID)
		assert.Nil(t, req.From)
		assert.Zero(t, req.Limit)
	})

	for name, q := range map[string]url.Values{
		"bad from":       {"from": {"yesterday"}},
		"bad to":         {"to": {"2030-13-01"}},
		"negative limit": {"limit": {"-1"}},
		"textual offset": {"offset": {"ten"}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ToServiceRequest(q)
			assert.Error(t, err)
		})
	}
}
