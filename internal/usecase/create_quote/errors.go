package create_quote

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_quote: invalid input data")

	// ErrStartInPast возвращается, когда аренда начинается раньше текущего момента
	ErrStartInPast = errors.New("create_quote: start time is in the past")

	// ErrCatalogUnavailable возвращается, когда каталог лодок ещё не загружен
	ErrCatalogUnavailable = errors.New("create_quote: catalog is not loaded")

	// ErrBusy возвращается, когда не удалось дождаться блокировки лодки
	ErrBusy = errors.New("create_quote: boat is busy, retry later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_quote: internal error")
)
