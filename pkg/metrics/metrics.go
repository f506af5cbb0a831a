// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Hold acquisition outcomes used as label values.
const (
	HoldAcquired = "acquired"
	HoldReused   = "reused"
	HoldConflict = "conflict"
	HoldFailed   = "failed"
)

// Metrics aggregates every collector exported by the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBOpenConnections prometheus.Gauge
	DBInUse           prometheus.Gauge
	DBIdle            prometheus.Gauge
	DBWaitCount       prometheus.Gauge
	DBQueryDuration   *prometheus.HistogramVec

	HoldsTotal           *prometheus.CounterVec
	HoldsReleasedTotal   prometheus.Counter
	HoldsExpiredTotal    prometheus.Counter
	BookingTransitions   *prometheus.CounterVec
	PaymentGatewayErrors prometheus.Counter
	AdminOverrides       *prometheus.CounterVec
	ReaperRunsTotal      *prometheus.CounterVec
	CatalogVersion       prometheus.Gauge
}

// New registers collectors in the default Prometheus registry.
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry registers collectors in reg.
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections to the database.",
			ConstLabels: constLabels,
		}),
		DBInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use.",
			ConstLabels: constLabels,
		}),
		DBIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections.",
			ConstLabels: constLabels,
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for.",
			ConstLabels: constLabels,
		}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database call latency by operation.",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		HoldsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservation_holds_total",
			Help:        "Hold acquisition attempts by outcome.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		HoldsReleasedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reservation_holds_released_total",
			Help:        "Holds released explicitly by customers.",
			ConstLabels: constLabels,
		}),
		HoldsExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reservation_holds_expired_total",
			Help:        "Holds cancelled after their TTL elapsed.",
			ConstLabels: constLabels,
		}),
		BookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservation_booking_transitions_total",
			Help:        "Booking status transitions.",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),
		PaymentGatewayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reservation_payment_gateway_errors_total",
			Help:        "Failed calls to the payment gateway.",
			ConstLabels: constLabels,
		}),
		AdminOverrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservation_admin_overrides_total",
			Help:        "Forced administrative transitions.",
			ConstLabels: constLabels,
		}, []string{"to"}),
		ReaperRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservation_reaper_runs_total",
			Help:        "Expiration reaper sweeps by outcome.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		CatalogVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "reservation_catalog_version",
			Help:        "Version of the pricing catalog currently in use.",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBOpenConnections,
		m.DBInUse,
		m.DBIdle,
		m.DBWaitCount,
		m.DBQueryDuration,
		m.HoldsTotal,
		m.HoldsReleasedTotal,
		m.HoldsExpiredTotal,
		m.BookingTransitions,
		m.PaymentGatewayErrors,
		m.AdminOverrides,
		m.ReaperRunsTotal,
		m.CatalogVersion,
	)

	return m
}

// ObserveHTTP records one handled request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveDB records the latency of one database call.
func (m *Metrics) ObserveDB(operation string, elapsed time.Duration) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObservePool copies connection pool statistics into gauges.
func (m *Metrics) ObservePool(stats sql.DBStats) {
	m.DBOpenConnections.Set(float64(stats.OpenConnections))
	m.DBInUse.Set(float64(stats.InUse))
	m.DBIdle.Set(float64(stats.Idle))
	m.DBWaitCount.Set(float64(stats.WaitCount))
}

func (m *Metrics) ObserveHold(result string) { m.HoldsTotal.WithLabelValues(result).Inc() }
func (m *Metrics) IncHoldReleased()          { m.HoldsReleasedTotal.Inc() }
func (m *Metrics) IncHoldExpired()           { m.HoldsExpiredTotal.Inc() }
func (m *Metrics) IncGatewayError()          { m.PaymentGatewayErrors.Inc() }

func (m *Metrics) ObserveTransition(from, to string) {
	m.BookingTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncAdminOverride(to string) {
	m.AdminOverrides.WithLabelValues(to).Inc()
}

func (m *Metrics) ObserveReaperRun(result string) {
	m.ReaperRunsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetCatalogVersion(version int64) {
	m.CatalogVersion.Set(float64(version))
}

// Nop satisfies the narrow metrics interfaces of the use cases without recording anything.
type Nop struct{}

func (Nop) ObserveHold(string)               {}
func (Nop) IncHoldReleased()                 {}
func (Nop) IncHoldExpired()                  {}
func (Nop) IncGatewayError()                 {}
func (Nop) ObserveTransition(string, string) {}
func (Nop) IncAdminOverride(string)          {}
func (Nop) ObserveReaperRun(string)          {}
func (Nop) SetCatalogVersion(int64)          {}
