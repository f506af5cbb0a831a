package update_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
	"github.com/m04kA/SMC-BoatRental/internal/service/bookings"
	"github.com/m04kA/SMC-BoatRental/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	gotID  uuid.UUID
	gotReq *models.UpdateBookingRequest
	err    error
}

func (f *fakeService) AdminUpdate(_ context.Context, id uuid.UUID, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	f.gotID, f.gotReq = id, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: id, BoatID: "B1", Status: "cancelled", PaymentStatus: "refunded"}, nil
}

func do(s BookingService, bookingID, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+bookingID, strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"bookingId": bookingID})
	w := httptest.NewRecorder()
	NewHandler(s, nopLogger{}).Handle(w, r)
	return w
}

func TestHandle_Updated(t *testing.T) {
	id := uuid.New()
	s := &fakeService{}

	w := do(s, id.String(), `{"status":"cancelled","paymentStatus":"refunded","force":true,"reason":"storm"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, s.gotID)
	require.NotNil(t, s.gotReq)
	assert.True(t, s.gotReq.Force)
	require.NotNil(t, s.gotReq.Status)
	assert.Equal(t, "cancelled", *s.gotReq.Status)

	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, "refunded", resp.PaymentStatus)
}

func TestHandle_BadRequest(t *testing.T) {
	t.Run("malformed id", func(t *testing.T) {
		s := &fakeService{}
		w := do(s, "42", `{"notes":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, s.gotReq)
	})

	t.Run("unknown field", func(t *testing.T) {
		s := &fakeService{}
		w := do(s, uuid.NewString(), `{"colour":"red"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, s.gotReq)
	})
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{bookings.ErrBookingNotFound, http.StatusNotFound},
		{bookings.ErrInvalidInput, http.StatusBadRequest},
		{bookings.ErrRangeNotEditable, http.StatusBadRequest},
		{bookings.ErrNotEditable, http.StatusConflict},
		{bookings.ErrForceRequired, http.StatusConflict},
		{fmt.Errorf("%w: confirmed -> hold", domain.ErrInvalidTransition), http.StatusConflict},
		{bookings.ErrConcurrentUpdate, http.StatusConflict},
		{domain.ErrSlotUnavailable, http.StatusConflict},
		{bookings.ErrInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := do(&fakeService{err: tt.err}, uuid.NewString(), `{"notes":"x"}`)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
