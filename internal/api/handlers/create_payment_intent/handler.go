package create_payment_intent

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
	"github.com/m04kA/SMC-BoatRental/internal/domain"
	createPaymentIntent "github.com/m04kA/SMC-BoatRental/internal/usecase/create_payment_intent"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidHoldID      = "некорректный ID холда"
	msgHoldNotFound       = "холд не найден"
	msgHoldExpired        = "срок холда истёк, запросите котировку заново"
	msgHoldConsumed       = "по этому холду уже создан платёж"
	msgPaymentGateway     = "платёжный сервис недоступен"
)

type Handler struct {
	useCase CreatePaymentIntentUseCase
	logger  Logger
}

func NewHandler(useCase CreatePaymentIntentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/create-payment-intent
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentIntentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /create-payment-intent - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /create-payment-intent - Invalid hold ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHoldID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createPaymentIntent.ErrInvalidInput):
			h.logger.Warn("POST /create-payment-intent - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidHoldID)

		case errors.Is(err, domain.ErrHoldNotFound):
			h.logger.Warn("POST /create-payment-intent - Hold not found: hold_id=%s", useCaseReq.HoldID)
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, domain.ErrHoldExpired):
			h.logger.Warn("POST /create-payment-intent - Hold expired: hold_id=%s", useCaseReq.HoldID)
			handlers.RespondError(w, http.StatusGone, msgHoldExpired)

		case errors.Is(err, domain.ErrHoldAlreadyConsumed):
			h.logger.Warn("POST /create-payment-intent - Hold already consumed: hold_id=%s", useCaseReq.HoldID)
			handlers.RespondConflict(w, msgHoldConsumed)

		case errors.Is(err, domain.ErrPaymentGateway):
			h.logger.Error("POST /create-payment-intent - Payment gateway error: hold_id=%s, error=%v", useCaseReq.HoldID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentGateway)

		default:
			h.logger.Error("POST /create-payment-intent - Failed to create payment intent: hold_id=%s, error=%v",
				useCaseReq.HoldID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /create-payment-intent - Payment intent created: booking_id=%s, intent_id=%s",
		result.BookingID, result.PaymentIntentID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
