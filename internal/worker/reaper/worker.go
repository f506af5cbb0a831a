package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout ограничение одного прохода
const jobTimeout = time.Minute

// Worker периодически запускает отмену истёкших холдов и обновление каталога.
// Следующий запуск задачи пропускается, пока не завершился предыдущий.
type Worker struct {
	cron    *cron.Cron
	reaper  HoldReaper
	catalog CatalogRefresher
	logger  Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorker создает новый экземпляр Worker.
// catalogInterval <= 0 отключает периодическое обновление каталога.
func NewWorker(
	reaper HoldReaper,
	catalog CatalogRefresher,
	logger Logger,
	reapInterval time.Duration,
	catalogInterval time.Duration,
) (*Worker, error) {
	adapter := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		cron: cron.New(
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
			cron.WithLogger(adapter),
		),
		reaper:  reaper,
		catalog: catalog,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	if _, err := w.cron.AddFunc(every(reapInterval), w.reap); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: reap every %s: %v", ErrSchedule, reapInterval, err)
	}

	if catalog != nil && catalogInterval > 0 {
		if _, err := w.cron.AddFunc(every(catalogInterval), w.refreshCatalog); err != nil {
			cancel()
			return nil, fmt.Errorf("%w: catalog refresh every %s: %v", ErrSchedule, catalogInterval, err)
		}
	}

	return w, nil
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

// Start запускает расписание в фоне
func (w *Worker) Start() {
	w.cron.Start()
	w.logger.Info("Reaper: started with %d jobs", len(w.cron.Entries()))
}

// Stop останавливает расписание и ждёт завершения текущих задач, но не дольше ctx
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := w.cron.Stop()

	select {
	case <-done.Done():
		w.logger.Info("Reaper: stopped")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Reaper: stop timed out, jobs still running")
		return ctx.Err()
	}
}

func (w *Worker) reap() {
	ctx, cancel := context.WithTimeout(w.ctx, jobTimeout)
	defer cancel()

	if _, err := w.reaper.Execute(ctx); err != nil {
		w.logger.Error("Reaper: run failed: %v", err)
	}
}

func (w *Worker) refreshCatalog() {
	ctx, cancel := context.WithTimeout(w.ctx, jobTimeout)
	defer cancel()

	if err := w.catalog.Refresh(ctx); err != nil {
		w.logger.Warn("Reaper: catalog refresh failed, keeping previous snapshot: %v", err)
	}
}
