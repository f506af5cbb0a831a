package check_availability

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("check_availability: invalid input data")

	// ErrCatalogUnavailable возвращается, когда каталог лодок ещё не загружен
	ErrCatalogUnavailable = errors.New("check_availability: catalog is not loaded")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_availability: internal error")
)
