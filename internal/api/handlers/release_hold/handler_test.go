package release_hold

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	got uuid.UUID
	err error
}

func (f *fakeService) Release(_ context.Context, holdID uuid.UUID) error {
	f.got = holdID
	return f.err
}

func do(s HoldService, holdID string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodDelete, "/api/v1/holds/"+holdID, nil)
	r = mux.SetURLVars(r, map[string]string{"holdId": holdID})
	w := httptest.NewRecorder()
	NewHandler(s, nopLogger{}).Handle(w, r)
	return w
}

func TestHandle(t *testing.T) {
	holdID := uuid.New()

	t.Run("released", func(t *testing.T) {
		s := &fakeService{}
		w := do(s, holdID.String())
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, holdID, s.got)
		assert.Empty(t, w.Body.String())
	})

	t.Run("unknown hold", func(t *testing.T) {
		w := do(&fakeService{err: domain.ErrHoldNotFound}, holdID.String())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		s := &fakeService{}
		w := do(s, "not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, uuid.Nil, s.got)
	})

	t.Run("internal error", func(t *testing.T) {
		w := do(&fakeService{err: assert.AnError}, holdID.String())
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
