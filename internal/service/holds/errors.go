package holds

import "errors"

var (
	// ErrLock возвращается, когда не удалось захватить блокировку лодки
	ErrLock = errors.New("holds: failed to acquire boat lock")

	// ErrInvalidDraft возвращается, когда черновик бронирования заполнен некорректно
	ErrInvalidDraft = errors.New("holds: invalid booking draft")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("holds: internal error")
)
