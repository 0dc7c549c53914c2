package observability

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

const namespace = "atlas"

// Metrics holds every collector the service exports. All methods are nil-safe so callers can
// run with metrics disabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	geoWrites         *prometheus.CounterVec
	geoWriteLatency   *prometheus.HistogramVec
	geoWriteConflicts *prometheus.CounterVec
	geoWriteRetries   *prometheus.CounterVec
	rollupCountries   *prometheus.HistogramVec

	continentResolutions *prometheus.CounterVec
	importRecords        *prometheus.CounterVec

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

// New registers the collectors on a fresh registry. Pass nil to get one with the Go and process
// collectors preinstalled.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request latency in seconds by method/route/status.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_inflight_requests",
			Help:      "In-flight API requests.",
		}),
		geoWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_writes_total",
			Help:      "Continent, country and city writes by entity, action and result code.",
		}, []string{"entity", "action", "status"}),
		geoWriteLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geo_write_duration_seconds",
			Help:      "Geo write latency including the transaction and any population rollup.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"entity", "action"}),
		geoWriteConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_write_conflicts_total",
			Help:      "Geo writes rejected by a uniqueness conflict.",
		}, []string{"entity", "action"}),
		geoWriteRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_write_retryable_total",
			Help:      "Geo writes that hit a serialization failure, deadlock or timeout.",
		}, []string{"entity", "action"}),
		rollupCountries: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "population_rollup_countries",
			Help:      "Country populations refreshed by one committed city write.",
			Buckets:   []float64{0, 1, 2},
		}, []string{"action"}),
		continentResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "continent_resolutions_total",
			Help:      "Continent name resolutions by outcome.",
		}, []string{"outcome"}),
		importRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "country_import_records_total",
			Help:      "Imported country records by result.",
		}, []string{"result"}),
		redisUp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "redis_up",
			Help:      "1 when the last redis ping succeeded.",
		}),
		redisPing: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "redis_ping_seconds",
			Help:      "Latency of the last successful redis ping.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveGeoWrite(entity, action, status string, dur time.Duration) {
	if m == nil {
		return
	}
	entity, action = orUnknown(entity), orUnknown(action)
	m.geoWrites.WithLabelValues(entity, action, orUnknown(status)).Inc()
	m.geoWriteLatency.WithLabelValues(entity, action).Observe(dur.Seconds())
}

func (m *Metrics) IncGeoWriteConflict(entity, action string) {
	if m == nil {
		return
	}
	m.geoWriteConflicts.WithLabelValues(orUnknown(entity), orUnknown(action)).Inc()
}

func (m *Metrics) IncGeoWriteRetry(entity, action string) {
	if m == nil {
		return
	}
	m.geoWriteRetries.WithLabelValues(orUnknown(entity), orUnknown(action)).Inc()
}

// ObserveRollupCountries records a city write that refreshed n countries: 1 normally, 2 on reassignment.
func (m *Metrics) ObserveRollupCountries(action string, n int) {
	if m == nil {
		return
	}
	m.rollupCountries.WithLabelValues(orUnknown(action)).Observe(float64(n))
}

func (m *Metrics) IncContinentResolution(outcome string) {
	if m == nil {
		return
	}
	m.continentResolutions.WithLabelValues(orUnknown(outcome)).Inc()
}

func (m *Metrics) IncImportRecord(result string) {
	if m == nil {
		return
	}
	m.importRecords.WithLabelValues(orUnknown(result)).Inc()
}

// RegisterDBStats exports database/sql pool statistics for db.
func (m *Metrics) RegisterDBStats(log *logger.Logger, db *gorm.DB, dbName string) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, dbName)); err != nil && log != nil {
		log.Warn("metrics: db stats collector not registered", "error", err)
	}
}

// StartRedisCollector pings rdb every interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil && ctx.Err() == nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
