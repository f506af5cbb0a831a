package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotNotAvailable возвращается, когда вставка нарушает ограничение исключения по интервалам лодки
	ErrSlotNotAvailable = errors.New("booking.repository: slot not available")

	// ErrStatusConflict возвращается, когда статус бронирования изменился конкурентно
	ErrStatusConflict = errors.New("booking.repository: booking status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrEncodeExtras возвращается, когда выбранные опции не удалось сериализовать
	ErrEncodeExtras = errors.New("booking.repository: failed to encode selected extras")
)
