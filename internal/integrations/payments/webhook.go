package payments

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Типы событий Stripe, на которые реагирует сервис
const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
	eventPaymentCanceled  = "payment_intent.canceled"
)

// WebhookVerifier проверяет подпись Stripe-Signature и разбирает событие
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier создает проверку подписи с секретом конечной точки
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Parse проверяет подпись и время события (допуск по умолчанию 5 минут)
// и возвращает событие платежа
func (v *WebhookVerifier) Parse(payload []byte, signatureHeader string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &PaymentEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Kind: EventIgnored,
	}

	switch string(event.Type) {
	case eventPaymentSucceeded:
		result.Kind = EventSucceeded
	case eventPaymentFailed:
		result.Kind = EventFailed
	case eventPaymentCanceled:
		result.Kind = EventCanceled
	default:
		return result, nil
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", ErrMalformedEvent, event.ID)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: event %s: %v", ErrMalformedEvent, event.ID, err)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("%w: event %s has no payment intent id", ErrMalformedEvent, event.ID)
	}

	result.IntentID = pi.ID
	if raw, ok := pi.Metadata[MetadataBookingID]; ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s: booking id %q: %v", ErrMalformedEvent, event.ID, raw, err)
		}
		result.BookingID = id
	}
	if pi.LastPaymentError != nil {
		result.FailureMessage = pi.LastPaymentError.Msg
	}

	return result, nil
}
