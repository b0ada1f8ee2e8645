package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerRequests *prometheus.CounterVec
	skips            *prometheus.CounterVec
	cacheResults     *prometheus.CounterVec
	eventRefreshes   *prometheus.CounterVec
	eventCount       prometheus.Gauge
	archivedRows     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		providerRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropull_provider_requests_total",
				Help: "Provider requests by outcome",
			},
			[]string{"provider", "outcome"},
		),
		skips: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropull_skipped_units_total",
				Help: "Indicators or assets dropped from a result, by reason",
			},
			[]string{"unit", "reason"},
		),
		cacheResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropull_cache_requests_total",
				Help: "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),
		eventRefreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropull_event_rebuilds_total",
				Help: "Event set rebuilds by mode",
			},
			[]string{"live"},
		),
		eventCount: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "macropull_events_cached",
				Help: "Number of events in the current event set",
			},
		),
		archivedRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropull_archived_rows_total",
				Help: "Reaction rows written to the archive",
			},
			[]string{"backend"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macropull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macropull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProviderRequest counts one provider call. outcome is ok, error or empty.
func (r *Recorder) RecordProviderRequest(provider, outcome string) {
	r.providerRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordSkip counts a dropped unit.
func (r *Recorder) RecordSkip(unit, code string) {
	r.skips.WithLabelValues(unit, code).Inc()
}

func (r *Recorder) RecordCacheResult(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheResults.WithLabelValues(cache, result).Inc()
}

func (r *Recorder) RecordEventsRefresh(live bool, count int) {
	r.eventRefreshes.WithLabelValues(strconv.FormatBool(live)).Inc()
	r.eventCount.Set(float64(count))
}

func (r *Recorder) RecordArchived(backend string, rows int) {
	r.archivedRows.WithLabelValues(backend).Add(float64(rows))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
