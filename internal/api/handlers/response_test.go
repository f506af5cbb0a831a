package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"B1"}`))
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "B1", p.Name)
	})

	t.Run("empty", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		assert.ErrorIs(t, DecodeJSON(r, &p), ErrEmptyBody)
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"B1","price":1}`))
		var p payload
		assert.Error(t, DecodeJSON(r, &p))
	})
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondConflict(w, "занято")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"занято"}`, w.Body.String())
}
