// Package metrics provides Prometheus collectors for the translation pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline's metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	registry *prometheus.Registry

	CacheLookups        *prometheus.CounterVec // Cache lookups by result (hit, miss)
	Translations        *prometheus.CounterVec // Remote translations by outcome (success, error)
	StaleResults        prometheus.Counter     // Results discarded because a newer input arrived
	TranslationDuration prometheus.Histogram   // Remote translation latency, retries included
}

// NewCollector creates a collector registered on its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bearchat_cache_lookups_total",
				Help: "Total number of translation cache lookups",
			},
			[]string{"result"},
		),

		Translations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bearchat_translations_total",
				Help: "Total number of remote translation requests",
			},
			[]string{"outcome"},
		),

		StaleResults: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bearchat_stale_results_total",
				Help: "Translation results discarded because a newer input superseded them",
			},
		),

		TranslationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bearchat_translation_duration_seconds",
				Help:    "Remote translation duration in seconds, including retries",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordCacheLookup records a cache hit or miss.
func (c *Collector) RecordCacheLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}

// RecordTranslation records the outcome and duration of a remote translation.
func (c *Collector) RecordTranslation(err error, duration time.Duration) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.Translations.WithLabelValues(outcome).Inc()
	c.TranslationDuration.Observe(duration.Seconds())
}

// RecordStale records a discarded out-of-order result.
func (c *Collector) RecordStale() {
	if c == nil {
		return
	}
	c.StaleResults.Inc()
}
