// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesTotal           *prometheus.CounterVec
	imagesTotal          *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	activeWorkers        prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipcrawl_pages_total",
				Help: "Total number of pages crawled, labeled by host and outcome.",
			},
			[]string{"host", "outcome"},
		)

		imagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipcrawl_images_total",
				Help: "Total number of og:image downloads, labeled by result.",
			},
			[]string{"result"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clipcrawl_fetch_duration_seconds",
				Help:    "Duration of page fetches, labeled by host.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "clipcrawl_active_workers",
				Help: "Number of crawl pipelines currently in flight.",
			},
		)
	})
}

// ObservePage counts one finished page crawl.
func ObservePage(host, outcome string) {
	if pagesTotal == nil {
		return
	}
	pagesTotal.WithLabelValues(host, outcome).Inc()
}

// ObserveImage counts one image persistence result ("saved", "skipped" or
// "failed").
func ObserveImage(result string) {
	if imagesTotal == nil {
		return
	}
	imagesTotal.WithLabelValues(result).Inc()
}

// ObserveFetchDuration records how long a page fetch took.
func ObserveFetchDuration(host string, d time.Duration) {
	if fetchDurationSeconds == nil {
		return
	}
	fetchDurationSeconds.WithLabelValues(host).Observe(d.Seconds())
}

// WorkerStarted increments the in-flight worker gauge.
func WorkerStarted() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Inc()
}

// WorkerFinished decrements the in-flight worker gauge.
func WorkerFinished() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Dec()
}
