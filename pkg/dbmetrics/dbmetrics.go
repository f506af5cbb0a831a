// Package dbmetrics wraps *sql.DB so that repositories can transparently run inside a
// transaction carried by the context, and so that database calls are timed.
package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

// DefaultPoolStatsInterval is how often connection pool statistics are sampled.
const DefaultPoolStatsInterval = 15 * time.Second

// DBExecutor is the subset of *sql.DB / *sql.Tx used by repositories.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor is a DBExecutor bound to an open transaction.
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

// Collector receives timings and pool statistics.
type Collector interface {
	ObserveDB(operation string, elapsed time.Duration)
	ObservePool(stats sql.DBStats)
}

// DB wraps *sql.DB. A nil collector disables metrics.
type DB struct {
	db        *sql.DB
	collector Collector
}

// Wrap returns a DB without starting the pool statistics loop.
func Wrap(db *sql.DB, collector Collector) *DB {
	return &DB{db: db, collector: collector}
}

// WrapWithDefault wraps db and samples pool statistics every DefaultPoolStatsInterval
// until stop is closed.
func WrapWithDefault(db *sql.DB, collector Collector, stop <-chan struct{}) *DB {
	wrapped := Wrap(db, collector)
	if collector != nil {
		go wrapped.collectPoolStats(DefaultPoolStatsInterval, stop)
	}
	return wrapped
}

func (d *DB) collectPoolStats(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		d.collector.ObservePool(d.db.Stats())
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (d *DB) observe(operation string, start time.Time) {
	if d.collector != nil {
		d.collector.ObserveDB(operation, time.Since(start))
	}
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer d.observe("exec", time.Now())
	return d.db.ExecContext(ctx, query, args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer d.observe("query", time.Now())
	return d.db.QueryContext(ctx, query, args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer d.observe("query_row", time.Now())
	return d.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction whose calls are timed the same way.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	defer d.observe("begin", time.Now())
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, db: d}, nil
}

// Tx is a timed *sql.Tx.
type Tx struct {
	tx *sql.Tx
	db *DB
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer t.db.observe("tx_exec", time.Now())
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer t.db.observe("tx_query", time.Now())
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer t.db.observe("tx_query_row", time.Now())
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *Tx) Commit() error {
	defer t.db.observe("commit", time.Now())
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

type txKey struct{}

// WithTx stores tx in ctx.
func WithTx(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

type readOnlyKey struct{}

// WithReadOnlyTx stores tx in ctx and marks it read-only.
func WithReadOnlyTx(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(WithTx(ctx, tx), readOnlyKey{}, true)
}

// TxFromContext returns the transaction stored in ctx, if any.
func TxFromContext(ctx context.Context) (TxExecutor, bool) {
	tx, ok := ctx.Value(txKey{}).(TxExecutor)
	return tx, ok
}

// IsInTransaction reports whether ctx carries a transaction.
func IsInTransaction(ctx context.Context) bool {
	_, ok := TxFromContext(ctx)
	return ok
}

// CanLockRows reports whether ctx carries a writable transaction, where SELECT ... FOR UPDATE
// is allowed.
func CanLockRows(ctx context.Context) bool {
	readOnly, _ := ctx.Value(readOnlyKey{}).(bool)
	return IsInTransaction(ctx) && !readOnly
}

// GetExecutor returns the transaction from ctx, or db when there is none.
func GetExecutor(ctx context.Context, db DBExecutor) DBExecutor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}
