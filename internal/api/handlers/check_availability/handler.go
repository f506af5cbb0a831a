package check_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
	"github.com/m04kA/SMC-BoatRental/internal/domain"
	checkAvailability "github.com/m04kA/SMC-BoatRental/internal/usecase/check_availability"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC3339"
	msgInvalidRange       = "время начала должно быть раньше времени окончания"
	msgBoatNotFound       = "лодка не найдена"
	msgCatalogUnavailable = "каталог лодок временно недоступен"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/check-availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CheckAvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /check-availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /check-availability - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("POST /check-availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, domain.ErrInvalidTimeRange):
			h.logger.Warn("POST /check-availability - Invalid range: boat_id=%s", req.BoatID)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, domain.ErrBoatNotFound):
			h.logger.Warn("POST /check-availability - Boat not found: boat_id=%s", req.BoatID)
			handlers.RespondNotFound(w, msgBoatNotFound)

		case errors.Is(err, checkAvailability.ErrCatalogUnavailable):
			h.logger.Warn("POST /check-availability - Catalog unavailable")
			handlers.RespondServiceUnavailable(w, msgCatalogUnavailable)

		default:
			h.logger.Error("POST /check-availability - Failed to check availability: boat_id=%s, error=%v", req.BoatID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /check-availability - boat_id=%s, available=%t", result.BoatID, result.Available)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
