package catalog

import "errors"

var (
	// ErrCatalogEmpty возвращается, когда в БД нет ни одной версии каталога
	ErrCatalogEmpty = errors.New("catalog.repository: catalog version not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("catalog.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("catalog.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("catalog.repository: failed to scan row")

	// ErrInvalidData возвращается, когда данные каталога в БД не проходят валидацию
	ErrInvalidData = errors.New("catalog.repository: invalid catalog data")
)
