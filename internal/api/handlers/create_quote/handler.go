package create_quote

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
	"github.com/m04kA/SMC-BoatRental/internal/domain"
	createQuote "github.com/m04kA/SMC-BoatRental/internal/usecase/create_quote"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC3339"
	msgInvalidInput       = "некорректные данные запроса"
	msgInvalidRange       = "время начала должно быть раньше времени окончания"
	msgInvalidDuration    = "длительность аренды должна быть 1, 2, 3, 4, 6 или 8 часов"
	msgStartInPast        = "время начала аренды уже прошло"
	msgBoatNotFound       = "лодка не найдена"
	msgExtraNotFound      = "дополнительная опция не найдена"
	msgCapacityExceeded   = "число людей превышает вместимость лодки"
	msgNoSeasonPricing    = "для выбранной даты нет сезонных цен"
	msgSlotUnavailable    = "выбранное время уже занято"
	msgCatalogUnavailable = "каталог лодок временно недоступен"
	msgBusy               = "лодка сейчас бронируется, повторите запрос"
)

type Handler struct {
	useCase CreateQuoteUseCase
	logger  Logger
}

func NewHandler(useCase CreateQuoteUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/quote
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /quote - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /quote - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotUnavailable):
			h.logger.Warn("POST /quote - Slot unavailable: boat_id=%s", req.BoatID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, createQuote.ErrInvalidInput):
			h.logger.Warn("POST /quote - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, domain.ErrInvalidTimeRange):
			h.logger.Warn("POST /quote - Invalid range: boat_id=%s", req.BoatID)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, domain.ErrInvalidDuration):
			h.logger.Warn("POST /quote - Invalid duration: boat_id=%s, error=%v", req.BoatID, err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, createQuote.ErrStartInPast):
			h.logger.Warn("POST /quote - Start in past: boat_id=%s", req.BoatID)
			handlers.RespondUnprocessable(w, msgStartInPast)

		case errors.Is(err, domain.ErrBoatNotFound):
			h.logger.Warn("POST /quote - Boat not found: boat_id=%s", req.BoatID)
			handlers.RespondNotFound(w, msgBoatNotFound)

		case errors.Is(err, domain.ErrExtraNotFound):
			h.logger.Warn("POST /quote - Extra not found: %v", err)
			handlers.RespondUnprocessable(w, msgExtraNotFound)

		case errors.Is(err, domain.ErrCapacityExceeded):
			h.logger.Warn("POST /quote - Capacity exceeded: boat_id=%s, people=%d", req.BoatID, req.NumberOfPeople)
			handlers.RespondUnprocessable(w, msgCapacityExceeded)

		case errors.Is(err, domain.ErrNoSeasonPricing):
			h.logger.Warn("POST /quote - No season pricing: boat_id=%s, start=%s", req.BoatID, req.StartTime)
			handlers.RespondUnprocessable(w, msgNoSeasonPricing)

		case errors.Is(err, createQuote.ErrCatalogUnavailable):
			h.logger.Warn("POST /quote - Catalog unavailable")
			handlers.RespondServiceUnavailable(w, msgCatalogUnavailable)

		case errors.Is(err, createQuote.ErrBusy):
			h.logger.Warn("POST /quote - Boat busy: boat_id=%s", req.BoatID)
			handlers.RespondServiceUnavailable(w, msgBusy)

		default:
			h.logger.Error("POST /quote - Failed to create quote: boat_id=%s, error=%v", req.BoatID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}

	h.logger.Info("POST /quote - Quote created: booking_id=%s, hold_id=%s, boat_id=%s, reused=%t",
		result.BookingID, result.HoldID, result.BoatID, result.Reused)
	handlers.RespondJSON(w, status, FromUseCaseResponse(result))
}
