// Package metrics provides the centralized Prometheus metrics registry for
// the annotation tool.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RecordsSavedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyotei_note",
		Name:      "records_saved_total",
		Help:      "Total number of race records persisted",
	})
	DuplicateSkipsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyotei_note",
		Name:      "duplicate_skips_total",
		Help:      "Total number of inserts skipped because the record already existed",
	})
	ValidationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyotei_note",
		Name:      "validation_failures_total",
		Help:      "Total number of records rejected by the builder",
	})
	CardFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kyotei_note",
		Name:      "card_fetches_total",
		Help:      "Race card fetch attempts by outcome",
	}, []string{"outcome"})
	ShortcutExpansionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kyotei_note",
		Name:      "shortcut_expansions_total",
		Help:      "Outcome shortcut expansions by family",
	}, []string{"family"})
	ExportRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyotei_note",
		Name:      "export_runs_total",
		Help:      "Total number of CSV export runs",
	})
)

// Gauge metrics
var (
	CardCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kyotei_note",
		Name:      "card_cache_hit_ratio",
		Help:      "Hit ratio of the race card cache",
	})
	RecordsExportedLast = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kyotei_note",
		Name:      "records_exported_last",
		Help:      "Row count of the most recent CSV export",
	})
)

// Histogram metrics
var (
	CardFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kyotei_note",
		Name:      "card_fetch_duration_seconds",
		Help:      "Duration of race card fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SubmitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kyotei_note",
		Name:      "submit_duration_seconds",
		Help:      "Duration of full-race submissions in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(RecordsSavedTotal)
		registry.MustRegister(DuplicateSkipsTotal)
		registry.MustRegister(ValidationFailuresTotal)
		registry.MustRegister(CardFetchesTotal)
		registry.MustRegister(ShortcutExpansionsTotal)
		registry.MustRegister(ExportRunsTotal)

		// Register gauge metrics
		registry.MustRegister(CardCacheHitRatio)
		registry.MustRegister(RecordsExportedLast)

		// Register histogram metrics
		registry.MustRegister(CardFetchDuration)
		registry.MustRegister(SubmitDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSaved records one persisted race record.
func RecordSaved() {
	RecordsSavedTotal.Inc()
}

// RecordDuplicateSkip records a skipped duplicate insert.
func RecordDuplicateSkip() {
	DuplicateSkipsTotal.Inc()
}

// RecordValidationFailure records a builder rejection.
func RecordValidationFailure() {
	ValidationFailuresTotal.Inc()
}

// RecordCardFetch records one card fetch attempt with its outcome
// (ok, not_published, unreachable).
func RecordCardFetch(outcome string, durationSeconds float64) {
	CardFetchesTotal.WithLabelValues(outcome).Inc()
	CardFetchDuration.Observe(durationSeconds)
}

// RecordShortcutExpansion records a fired shortcut expansion.
func RecordShortcutExpansion(family string) {
	ShortcutExpansionsTotal.WithLabelValues(family).Inc()
}

// RecordExport records a CSV export run and its row count.
func RecordExport(rows int) {
	ExportRunsTotal.Inc()
	RecordsExportedLast.Set(float64(rows))
}

// UpdateCardCacheHitRatio updates the cache hit ratio gauge.
func UpdateCardCacheHitRatio(ratio float64) {
	CardCacheHitRatio.Set(ratio)
}

// RecordSubmitDuration records the duration of one full-race submission.
func RecordSubmitDuration(durationSeconds float64) {
	SubmitDuration.Observe(durationSeconds)
}
