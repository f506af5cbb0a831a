package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Client клиент платёжного шлюза Stripe
type Client struct {
	api      *client.API
	currency string
	log      Logger
}

// NewClient создает новый экземпляр клиента Stripe.
// backends == nil означает стандартные адреса API Stripe.
func NewClient(secretKey, currency string, backends *stripe.Backends, log Logger) *Client {
	api := &client.API{}
	api.Init(secretKey, backends)

	return &Client{
		api:      api,
		currency: currency,
		log:      log,
	}
}

// CreateIntent создает PaymentIntent на сумму бронирования.
// Ключ идемпотентности равен идентификатору холда: повтор запроса после сетевой ошибки
// не создаёт второй платёж.
func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.Email != nil && *req.Email != "" {
		params.ReceiptEmail = req.Email
	}
	params.Context = ctx
	params.SetIdempotencyKey("hold-" + req.HoldID.String())
	params.AddMetadata(MetadataBookingID, req.BookingID.String())
	params.AddMetadata(MetadataHoldID, req.HoldID.String())
	params.AddMetadata(MetadataBoatID, req.BoatID)

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			c.log.Error("Stripe: create payment intent for booking=%s failed: type=%s code=%s status=%d: %s",
				req.BookingID, stripeErr.Type, stripeErr.Code, stripeErr.HTTPStatusCode, stripeErr.Msg)
		} else {
			c.log.Error("Stripe: create payment intent for booking=%s failed: %v", req.BookingID, err)
		}
		return nil, fmt.Errorf("%w: booking %s: %v", ErrGateway, req.BookingID, err)
	}

	c.log.Info("Stripe: created payment intent=%s for booking=%s amount=%d %s",
		pi.ID, req.BookingID, pi.Amount, pi.Currency)

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}
