// Package metrics exposes crawl counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/corpuscrawl/internal/model"
)

const namespace = "corpuscrawl"

// Collector holds the crawl metrics on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry      *prometheus.Registry
	pages         *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	frontierSize  prometheus.Gauge
	faqItems      prometheus.Counter
}

// New creates a Collector with its own registry, including the Go
// runtime and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		pages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages processed, by outcome.",
		}, []string{"outcome"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of page fetches including retries.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		frontierSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frontier_size",
			Help:      "URLs waiting in the frontier.",
		}),
		faqItems: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faq_items_total",
			Help:      "FAQ pairs extracted from persisted documents.",
		}),
	}
}

// Page counts one processed page.
func (c *Collector) Page(outcome model.Outcome) {
	if c == nil {
		return
	}
	c.pages.WithLabelValues(string(outcome)).Inc()
}

// ObserveFetch records the duration of one fetch.
func (c *Collector) ObserveFetch(d time.Duration) {
	if c == nil {
		return
	}
	c.fetchDuration.Observe(d.Seconds())
}

// SetFrontierSize updates the frontier gauge.
func (c *Collector) SetFrontierSize(n int) {
	if c == nil {
		return
	}
	c.frontierSize.Set(float64(n))
}

// AddFAQItems counts extracted FAQ pairs.
func (c *Collector) AddFAQItems(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.faqItems.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
