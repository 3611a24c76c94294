// Package metrics collects run counters with Prometheus and exports them
// in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the set of events the pipeline reports.
type Recorder interface {
	RecordFeed(ok bool)
	RecordFetch(strategy string, duration time.Duration)
	RecordSummary(textSource, tier string)
	RecordRun(newItems int, duration time.Duration)
}

// Collector records pipeline events as Prometheus metrics.
type Collector struct {
	feeds        *prometheus.CounterVec
	fetches      *prometheus.CounterVec
	fetchLatency prometheus.Histogram
	summaries    *prometheus.CounterVec
	newItems     prometheus.Counter
	lastRun      prometheus.Gauge
	runDuration  prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		feeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertdigest_feeds_total",
			Help: "Feeds read, by outcome.",
		}, []string{"result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertdigest_fetches_total",
			Help: "Article fetches, by the strategy that produced a payload.",
		}, []string{"strategy"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "alertdigest_fetch_latency_seconds",
			Help:    "Article fetch latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alertdigest_summaries_total",
			Help: "Summaries produced, by selected text and ranking tier.",
		}, []string{"text_source", "tier"}),
		newItems: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alertdigest_new_items_total",
			Help: "Articles added to the history.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alertdigest_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alertdigest_last_run_duration_seconds",
			Help: "Duration of the last completed run.",
		}),
	}

	reg.MustRegister(
		c.feeds,
		c.fetches,
		c.fetchLatency,
		c.summaries,
		c.newItems,
		c.lastRun,
		c.runDuration,
	)
	return c
}

// RecordFeed counts one feed read.
func (c *Collector) RecordFeed(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.feeds.WithLabelValues(result).Inc()
}

// RecordFetch counts one article fetch.
func (c *Collector) RecordFetch(strategy string, duration time.Duration) {
	c.fetches.WithLabelValues(strategy).Inc()
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordSummary counts one summary.
func (c *Collector) RecordSummary(textSource, tier string) {
	c.summaries.WithLabelValues(textSource, tier).Inc()
}

// RecordRun marks the end of a run.
func (c *Collector) RecordRun(newItems int, duration time.Duration) {
	c.newItems.Add(float64(newItems))
	c.lastRun.SetToCurrentTime()
	c.runDuration.Set(duration.Seconds())
}

// WriteTextfile writes every metric of g to path in the text exposition
// format. The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Nop discards every event.
type Nop struct{}

func (Nop) RecordFeed(bool) {}
func (Nop) RecordFetch(string, time.Duration) {}
func (Nop) RecordSummary(string, string) {}
func (Nop) RecordRun(int, time.Duration) {}
