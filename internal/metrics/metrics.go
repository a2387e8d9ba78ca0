// Package metrics records Prometheus counters for a wordhoard run. Each
// Recorder owns its own registry so a run can dump its numbers to a
// node-exporter textfile without touching global state. All methods are
// safe on a nil *Recorder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "wordhoard"

// Recorder holds the metrics of one run
type Recorder struct {
	registry *prometheus.Registry

	LookupsTotal   *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	APICallsTotal  *prometheus.CounterVec
	RetriesTotal   *prometheus.CounterVec
	CacheAccess    *prometheus.CounterVec
	WordsExtracted prometheus.Gauge
	WordsProcessed *prometheus.CounterVec
}

// NewRecorder creates a Recorder backed by a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lookups_total",
			Help:      "Lookups by kind and outcome",
		}, []string{"kind", "outcome"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Lookup latency including retries",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		APICallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "api_calls_total",
			Help:      "HTTP requests sent to the reference API",
		}, []string{"kind"}),
		RetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "api_retries_total",
			Help:      "Retried HTTP requests",
		}, []string{"kind"}),
		CacheAccess: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_access_total",
			Help:      "Cache checks by kind and result",
		}, []string{"kind", "result"}),
		WordsExtracted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "words_extracted",
			Help:      "Unique words extracted from the source markup",
		}),
		WordsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "words_total",
			Help:      "Words handled by the processor by outcome",
		}, []string{"outcome"}),
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordLookup counts a finished lookup and its latency
func (r *Recorder) RecordLookup(kind, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.LookupsTotal.WithLabelValues(kind, outcome).Inc()
	r.LookupDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordAPICall counts one HTTP attempt
func (r *Recorder) RecordAPICall(kind string) {
	if r == nil {
		return
	}
	r.APICallsTotal.WithLabelValues(kind).Inc()
}

// RecordRetry counts one retry after a failed attempt
func (r *Recorder) RecordRetry(kind string) {
	if r == nil {
		return
	}
	r.RetriesTotal.WithLabelValues(kind).Inc()
}

// RecordCacheAccess counts a cache hit or miss
func (r *Recorder) RecordCacheAccess(kind string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheAccess.WithLabelValues(kind, result).Inc()
}

// SetWordsExtracted records the size of the extracted vocabulary
func (r *Recorder) SetWordsExtracted(n int) {
	if r == nil {
		return
	}
	r.WordsExtracted.Set(float64(n))
}

// RecordWord counts a word as processed, skipped or errored
func (r *Recorder) RecordWord(outcome string) {
	if r == nil {
		return
	}
	r.WordsProcessed.WithLabelValues(outcome).Inc()
}

// WriteTextfile dumps the registry in the Prometheus text format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
