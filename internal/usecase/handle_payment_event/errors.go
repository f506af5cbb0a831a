package handle_payment_event

import "errors"

var (
	// ErrInvalidSignature возвращается, когда событие не подписано шлюзом
	ErrInvalidSignature = errors.New("handle_payment_event: invalid signature")

	// ErrMalformedEvent возвращается, когда событие не удалось разобрать
	ErrMalformedEvent = errors.New("handle_payment_event: malformed event")

	// ErrInternal возвращается при внутренних ошибках usecase; шлюз повторит доставку
	ErrInternal = errors.New("handle_payment_event: internal error")
)
