package pricing

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/m04kA/SMC-BoatRental/internal/domain"
)

// CatalogProvider хранит текущий снимок каталога и атомарно подменяет его при обновлении.
// Читатели получают неизменяемый снимок и не видят частично загруженных данных.
type CatalogProvider struct {
	current atomic.Pointer[domain.Catalog]

	repo         CatalogRepository
	txManager    TransactionManager
	metrics      MetricsCollector
	timeProvider TimeProvider
	logger       Logger
}

// NewCatalogProvider создает провайдер каталога. Каталог загружается вызовом Refresh.
func NewCatalogProvider(
	repo CatalogRepository,
	txManager TransactionManager,
	metrics MetricsCollector,
	timeProvider TimeProvider,
	logger Logger,
) *CatalogProvider {
	return &CatalogProvider{
		repo:         repo,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// NewStaticProvider провайдер с фиксированным снимком
func NewStaticProvider(catalog *domain.Catalog) *CatalogProvider {
	p := &CatalogProvider{}
	p.current.Store(catalog)
	return p
}

// Current возвращает текущий снимок или nil, если каталог ещё не загружен
func (p *CatalogProvider) Current() *domain.Catalog {
	return p.current.Load()
}

// Refresh перечитывает каталог, если его версия в БД изменилась.
// При ошибке продолжает работать предыдущий снимок.
func (p *CatalogProvider) Refresh(ctx context.Context) error {
	var loaded *domain.Catalog

	err := p.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		version, err := p.repo.CurrentVersion(ctx)
		if err != nil {
			return err
		}

		if cur := p.current.Load(); cur != nil && cur.Version == version {
			return nil
		}

		loaded, err = p.repo.Load(ctx, p.timeProvider.Now())
		return err
	})
	if err != nil {
		p.logger.Error("CatalogProvider.Refresh: failed to load catalog: %v", err)
		return fmt.Errorf("%w: %v", ErrRefreshCatalog, err)
	}

	if loaded == nil {
		return nil
	}

	prev := p.current.Swap(loaded)
	p.metrics.SetCatalogVersion(loaded.Version)

	if prev == nil {
		p.logger.Info("CatalogProvider.Refresh: loaded catalog version=%d (%d boats, %d extras)",
			loaded.Version, len(loaded.Boats()), len(loaded.Extras()))
	} else {
		p.logger.Info("CatalogProvider.Refresh: catalog updated version %d -> %d", prev.Version, loaded.Version)
	}

	return nil
}
