package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Signal metrics
	fetchesTotal     *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
	batchesTotal     prometheus.Counter
	batchDuration    prometheus.Histogram
	batchFailures    prometheus.Histogram
	refreshCycles    *prometheus.CounterVec
	staleDiscarded   *prometheus.CounterVec
	alertsRouted     *prometheus.CounterVec
	watchlistSymbols prometheus.Gauge
	signalSetSize    prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaldeck_fetches_total",
			Help: "Total number of per-symbol prediction fetches by outcome",
		},
		[]string{"outcome"},
	)
	r.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signaldeck_fetch_duration_seconds",
			Help:    "Per-symbol prediction fetch duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
	r.batchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signaldeck_batches_total",
			Help: "Total number of batch loads completed",
		},
	)
	r.batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signaldeck_batch_duration_seconds",
			Help:    "Batch load duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
	r.batchFailures = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signaldeck_batch_failed_symbols",
			Help:    "Number of failed symbols per batch",
			Buckets: []float64{0, 1, 2, 5, 10, 25},
		},
	)
	r.refreshCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaldeck_refresh_cycles_total",
			Help: "Total number of applied refresh cycles per view",
		},
		[]string{"view"},
	)
	r.staleDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaldeck_stale_results_discarded_total",
			Help: "Results dropped because a newer refresh superseded them",
		},
		[]string{"view"},
	)
	r.alertsRouted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaldeck_alerts_routed_total",
			Help: "Total number of strong-signal alerts routed to notifiers",
		},
		[]string{"direction"},
	)
	r.watchlistSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaldeck_watchlist_symbols",
			Help: "Number of symbols in watchlist",
		},
	)
	r.signalSetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signaldeck_signal_set_size",
			Help: "Number of records in the committed signal set",
		},
	)

	reg.MustRegister(r.fetchesTotal)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.batchesTotal)
	reg.MustRegister(r.batchDuration)
	reg.MustRegister(r.batchFailures)
	reg.MustRegister(r.refreshCycles)
	reg.MustRegister(r.staleDiscarded)
	reg.MustRegister(r.alertsRouted)
	reg.MustRegister(r.watchlistSymbols)
	reg.MustRegister(r.signalSetSize)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{Registry: r.Registry})
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordFetch records one symbol fetch. outcome is "ok" or a failure code.
func (r *Registry) RecordFetch(outcome string, seconds float64) {
	r.fetchesTotal.WithLabelValues(outcome).Inc()
	r.fetchDuration.Observe(seconds)
}

// RecordBatch records a completed batch load.
func (r *Registry) RecordBatch(requested, failed int, seconds float64) {
	r.batchesTotal.Inc()
	r.batchDuration.Observe(seconds)
	r.batchFailures.Observe(float64(failed))
}

// RecordRefreshCycle records an applied scheduler cycle.
func (r *Registry) RecordRefreshCycle(view string) {
	r.refreshCycles.WithLabelValues(view).Inc()
}

// RecordStaleDiscard records a superseded result.
func (r *Registry) RecordStaleDiscard(view string) {
	r.staleDiscarded.WithLabelValues(view).Inc()
}

// RecordAlertRouted records an alert forwarded to notifiers. Alerts are
// labelled by direction; symbols come from users and are unbounded.
func (r *Registry) RecordAlertRouted(direction string) {
	r.alertsRouted.WithLabelValues(direction).Inc()
}

// SetWatchlistSize sets the watchlist size.
func (r *Registry) SetWatchlistSize(size int) {
	r.watchlistSymbols.Set(float64(size))
}

// SetSignalSetSize sets the committed signal set size.
func (r *Registry) SetSignalSetSize(size int) {
	r.signalSetSize.Set(float64(size))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
