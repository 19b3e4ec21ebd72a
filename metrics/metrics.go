// Package metrics defines the Prometheus collectors exposed by escopy.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricNamespace = "escopy"

// Counters.
var (
	//nolint:gochecknoglobals
	documentsReadTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "documents_read_total",
		Help:      "Total number of documents read from source scroll pages.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	documentsIndexedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "documents_indexed_total",
		Help:      "Total number of documents accepted by the destination bulk API.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	documentsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "documents_failed_total",
		Help:      "Total number of documents rejected by the destination bulk API.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	pagesReadTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "pages_read_total",
		Help:      "Total number of scroll pages fetched from the source.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	indexCopiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "index_copies_total",
		Help:      "Per-index replication outcomes.",
		Namespace: metricNamespace,
	}, []string{"result"})
)

// Histograms.
var (
	//nolint:gochecknoglobals
	bulkFlushDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:      "bulk_flush_duration_seconds",
		Help:      "Duration of destination bulk requests in seconds.",
		Namespace: metricNamespace,
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	//nolint:gochecknoglobals
	scrollFetchDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:      "scroll_fetch_duration_seconds",
		Help:      "Duration of source scroll page fetches in seconds.",
		Namespace: metricNamespace,
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
)

// Init initializes and registers the metrics.
func Init(reg prometheus.Registerer) {
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: metricNamespace,
	}))

	reg.MustRegister(
		documentsReadTotal,
		documentsIndexedTotal,
		documentsFailedTotal,
		pagesReadTotal,
		indexCopiesTotal,

		bulkFlushDurationSeconds,
		scrollFetchDurationSeconds,
	)
}

// AddDocumentsRead increments the total count of documents read from the source.
func AddDocumentsRead(v int) {
	documentsReadTotal.Add(float64(v))
}

// AddDocumentsIndexed increments the total count of documents accepted by the destination.
func AddDocumentsIndexed(v int) {
	documentsIndexedTotal.Add(float64(v))
}

// AddDocumentsFailed increments the total count of documents rejected by the destination.
func AddDocumentsFailed(v int) {
	documentsFailedTotal.Add(float64(v))
}

// IncPagesRead increments the total count of fetched scroll pages.
func IncPagesRead() {
	pagesReadTotal.Inc()
}

// IncIndexCopySuccess records a successful per-index replication.
func IncIndexCopySuccess() {
	indexCopiesTotal.WithLabelValues("success").Inc()
}

// IncIndexCopyFailure records a failed per-index replication.
func IncIndexCopyFailure() {
	indexCopiesTotal.WithLabelValues("failure").Inc()
}

// ObserveBulkFlushDuration records the duration of a destination bulk request.
func ObserveBulkFlushDuration(d time.Duration) {
	bulkFlushDurationSeconds.Observe(d.Seconds())
}

// ObserveScrollFetchDuration records the duration of a source scroll page fetch.
func ObserveScrollFetchDuration(d time.Duration) {
	scrollFetchDurationSeconds.Observe(d.Seconds())
}
