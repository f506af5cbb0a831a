package payments

import "errors"

var (
	// ErrGateway возвращается при любой ошибке Stripe при создании платежа
	ErrGateway = errors.New("payments client: gateway error")

	// ErrInvalidSignature возвращается, когда подпись webhook не прошла проверку
	ErrInvalidSignature = errors.New("payments client: invalid webhook signature")

	// ErrMalformedEvent возвращается, когда тело события не удалось разобрать
	ErrMalformedEvent = errors.New("payments client: malformed webhook event")
)
