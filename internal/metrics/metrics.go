// Package metrics collects batch statistics and writes them in the
// Prometheus text format, suitable for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matijazezelj/roadplan/pkg/models"
)

// Recorder holds the metrics of one process. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	routes        *prometheus.CounterVec
	routeDuration prometheus.Histogram
	skippedLines  *prometheus.CounterVec
	nodes         prometheus.Gauge
	roads         prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder creates a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		routes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadplan_routes_total",
				Help: "Route requests processed, by outcome",
			},
			[]string{"outcome"},
		),
		routeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "roadplan_route_duration_seconds",
				Help:    "Time spent computing and rendering a single route",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
		),
		skippedLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadplan_skipped_lines_total",
				Help: "Malformed input lines skipped, by input",
			},
			[]string{"input"},
		),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "roadplan_network_nodes",
			Help: "Locations in the loaded road network",
		}),
		roads: factory.NewGauge(prometheus.GaugeOpts{
			Name: "roadplan_network_roads",
			Help: "Roads in the loaded road network",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "roadplan_last_run_completed_timestamp_seconds",
			Help: "Unix time the last batch finished",
		}),
	}
}

// ObserveNetwork records the size of the loaded network and the number of
// road lines that were skipped.
func (r *Recorder) ObserveNetwork(nodes, roads, skipped int) {
	if r == nil {
		return
	}
	r.nodes.Set(float64(nodes))
	r.roads.Set(float64(roads))
	r.skippedLines.WithLabelValues("roads").Add(float64(skipped))
}

// ObserveRoute records one processed route request.
func (r *Recorder) ObserveRoute(outcome models.Outcome, took time.Duration) {
	if r == nil {
		return
	}
	r.routes.WithLabelValues(string(outcome)).Inc()
	r.routeDuration.Observe(took.Seconds())
}

// ObserveSkippedRequest records one malformed route request line.
func (r *Recorder) ObserveSkippedRequest() {
	if r == nil {
		return
	}
	r.skippedLines.WithLabelValues("routes").Inc()
}

// MarkCompleted stamps the completion time of a batch.
func (r *Recorder) MarkCompleted(at time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes all metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
