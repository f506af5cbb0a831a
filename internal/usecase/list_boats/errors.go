package list_boats

import "errors"

var (
	// ErrCatalogUnavailable возвращается, когда каталог лодок ещё не загружен
	ErrCatalogUnavailable = errors.New("list_boats: catalog is not loaded")
)
