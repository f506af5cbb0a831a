package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotEditable возвращается при попытке изменить отменённое бронирование
	ErrNotEditable = errors.New("booking cannot be edited")

	// ErrRangeNotEditable возвращается при попытке изменить лодку или интервал бронирования
	ErrRangeNotEditable = errors.New("boat and time range cannot be edited")

	// ErrForceRequired возвращается, когда операция над подтверждённым бронированием
	// выполняется без флага force
	ErrForceRequired = errors.New("operation requires force flag")

	// ErrPaymentMismatch возвращается, когда платёж относится к другому payment intent
	ErrPaymentMismatch = errors.New("payment intent does not match booking")

	// ErrConcurrentUpdate возвращается, когда статус бронирования изменился параллельно
	ErrConcurrentUpdate = errors.New("booking was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
