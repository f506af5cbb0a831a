package release_hold

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

const (
	msgInvalidHoldID = "некорректный ID холда"
	msgHoldNotFound  = "холд не найден"
)

type Handler struct {
	service HoldService
	logger  Logger
}

func NewHandler(service HoldService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/holds/{holdId}
// Повторное освобождение также отвечает 204.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	holdID, err := uuid.Parse(mux.Vars(r)["holdId"])
	if err != nil {
		h.logger.Warn("DELETE /holds/{id} - Invalid hold ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHoldID)
		return
	}

	if err := h.service.Release(r.Context(), holdID); err != nil {
		switch {
		case errors.Is(err, domain.ErrHoldNotFound):
			h.logger.Warn("DELETE /holds/{id} - Hold not found: hold_id=%s", holdID)
			handlers.RespondNotFound(w, msgHoldNotFound)

		default:
			h.logger.Error("DELETE /holds/{id} - Failed to release hold: hold_id=%s, error=%v", holdID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /holds/{id} - Hold released: hold_id=%s", holdID)
	handlers.RespondNoContent(w)
}
