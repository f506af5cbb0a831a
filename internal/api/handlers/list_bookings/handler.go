package list_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
	"github.com/m04kA/SMC-BoatRental/internal/service/bookings"
)

const (
	msgInvalidParams = "некорректные параметры запроса"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/bookings
// Query params: boatId, status, from, to, limit, offset (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceReq, err := ToServiceRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /admin/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /admin/bookings - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /admin/bookings - Failed to list bookings: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /admin/bookings - Bookings retrieved: count=%d, limit=%d, offset=%d",
		len(result.Bookings), result.Limit, result.Offset)
	handlers.RespondJSON(w, http.StatusOK, result)
}
