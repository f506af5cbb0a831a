package payment_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-BoatRental/internal/api/handlers"
	handlePaymentEvent "github.com/m04kA/SMC-BoatRental/internal/usecase/handle_payment_event"
)

const (
	// SignatureHeader заголовок с подписью события Stripe
	SignatureHeader = "Stripe-Signature"

	// maxPayloadBytes Stripe ограничивает размер события 64 КБ
	maxPayloadBytes = 65536

	msgInvalidPayload   = "некорректное тело события"
	msgInvalidSignature = "некорректная подпись события"
)

// WebhookResponse HTTP response model
type WebhookResponse struct {
	Received bool `json:"received"`
}

type Handler struct {
	useCase HandlePaymentEventUseCase
	logger  Logger
}

func NewHandler(useCase HandlePaymentEventUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/webhook
// 2xx подтверждает событие; 5xx заставляет шлюз повторить доставку.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
	if err != nil || len(payload) == 0 || len(payload) > maxPayloadBytes {
		h.logger.Warn("POST /payments/webhook - Invalid payload: size=%d, error=%v", len(payload), err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &handlePaymentEvent.Request{
		Payload:   payload,
		Signature: r.Header.Get(SignatureHeader),
	})
	if err != nil {
		switch {
		case errors.Is(err, handlePaymentEvent.ErrInvalidSignature):
			h.logger.Warn("POST /payments/webhook - Invalid signature: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSignature)

		case errors.Is(err, handlePaymentEvent.ErrMalformedEvent):
			h.logger.Warn("POST /payments/webhook - Malformed event: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPayload)

		default:
			h.logger.Error("POST /payments/webhook - Failed to handle event: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/webhook - Event processed: event_id=%s, kind=%s, booking_id=%s, handled=%t",
		result.EventID, result.Kind, result.BookingID, result.Handled)
	handlers.RespondJSON(w, http.StatusOK, WebhookResponse{Received: true})
}
