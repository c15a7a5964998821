// Package observability exports run metrics to Prometheus.
//
// Import runs are batch jobs without a scrape port, so the collector writes
// its registry to a node-exporter textfile after the run. Handler serves the
// same registry for long-lived embedders.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements tsvsubset.MetricsCollector.
type PrometheusCollector struct {
	registry *prometheus.Registry

	opLatency  *prometheus.HistogramVec
	seedKeys   prometheus.Gauge
	scanned    *prometheus.CounterVec
	matched    *prometheus.CounterVec
	bytes      *prometheus.CounterVec
	scans      *prometheus.CounterVec
	committed  prometheus.Counter
	lastCommit prometheus.Gauge
}

// NewPrometheusCollector creates a collector with its own registry.
func NewPrometheusCollector() *PrometheusCollector {
	c := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsvsubset_operation_duration_seconds",
			Help:    "Duration of seed, scan and commit operations",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"op", "status"}),
		seedKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsvsubset_seed_keys",
			Help: "Number of keys in the seed title set",
		}),
		scanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsvsubset_records_scanned_total",
			Help: "Records read per dataset",
		}, []string{"dataset"}),
		matched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsvsubset_rows_matched_total",
			Help: "Rows matched per dataset",
		}, []string{"dataset"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsvsubset_bytes_scanned_total",
			Help: "Decompressed bytes consumed per dataset",
		}, []string{"dataset"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsvsubset_scans_total",
			Help: "Dataset scans by outcome",
		}, []string{"dataset", "status"}),
		committed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsvsubset_rows_committed_total",
			Help: "Rows committed to the sink",
		}),
		lastCommit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsvsubset_last_success_timestamp_seconds",
			Help: "Unix time of the last successful commit",
		}),
	}

	c.registry.MustRegister(
		c.opLatency,
		c.seedKeys,
		c.scanned,
		c.matched,
		c.bytes,
		c.scans,
		c.committed,
		c.lastCommit,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordSeed implements tsvsubset.MetricsCollector.
func (c *PrometheusCollector) RecordSeed(keys uint64, d time.Duration, err error) {
	c.opLatency.WithLabelValues("seed", status(err)).Observe(d.Seconds())
	if err == nil {
		c.seedKeys.Set(float64(keys))
	}
}

// RecordScan implements tsvsubset.MetricsCollector.
func (c *PrometheusCollector) RecordScan(dataset string, scanned, matched, bytes int64, d time.Duration, err error) {
	c.opLatency.WithLabelValues("scan", status(err)).Observe(d.Seconds())
	c.scans.WithLabelValues(dataset, status(err)).Inc()
	c.scanned.WithLabelValues(dataset).Add(float64(scanned))
	c.matched.WithLabelValues(dataset).Add(float64(matched))
	c.bytes.WithLabelValues(dataset).Add(float64(bytes))
}

// RecordCommit implements tsvsubset.MetricsCollector.
func (c *PrometheusCollector) RecordCommit(rows int64, d time.Duration, err error) {
	c.opLatency.WithLabelValues("commit", status(err)).Observe(d.Seconds())
	if err == nil {
		c.committed.Add(float64(rows))
		c.lastCommit.SetToCurrentTime()
	}
}

// Registry returns the underlying registry.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes the registry in the text exposition format to path,
// atomically, for the node-exporter textfile collector.
func (c *PrometheusCollector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Handler serves the registry over HTTP.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
