package pricing

import "errors"

var (
	// ErrCatalogNotLoaded возвращается, пока не загружен ни один снимок каталога
	ErrCatalogNotLoaded = errors.New("pricing: catalog not loaded")

	// ErrInvalidQuantity возвращается при количестве опции меньше 1 или больше допустимого
	ErrInvalidQuantity = errors.New("pricing: invalid extra quantity")

	// ErrInvalidPeople возвращается при числе людей меньше 1
	ErrInvalidPeople = errors.New("pricing: number of people must be positive")

	// ErrRefreshCatalog возвращается, когда каталог не удалось перечитать
	ErrRefreshCatalog = errors.New("pricing: failed to refresh catalog")
)
