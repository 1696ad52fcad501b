/*
Package metrics holds the prometheus collectors for model training and queries.

The CLI is a batch process, so instead of serving /metrics the registry is
written to a node_exporter textfile on exit.
*/
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Model label values.
const (
	ModelSimilarity = "similarity"
	ModelForecast   = "forecast"
)

// Metrics groups the collectors registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TrainingRuns     *prometheus.CounterVec
	TrainingDuration *prometheus.HistogramVec
	TrainingRecords  *prometheus.GaugeVec
	ModelTrained     *prometheus.GaugeVec
	Queries          *prometheus.CounterVec
	ArtifactOps      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TrainingRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supply_intel_training_runs_total",
				Help: "Total number of training runs by model and outcome",
			},
			[]string{"model", "outcome"},
		),

		TrainingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "supply_intel_training_duration_seconds",
				Help:    "Duration of training runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"model"},
		),

		TrainingRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "supply_intel_training_records",
				Help: "Number of records used by the most recent training run",
			},
			[]string{"model"},
		),

		ModelTrained: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "supply_intel_model_trained",
				Help: "Whether the published bundle holds a trained model (1) or not (0)",
			},
			[]string{"model"},
		),

		Queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supply_intel_queries_total",
				Help: "Total number of model queries by operation and readiness",
			},
			[]string{"operation", "ready"},
		),

		ArtifactOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supply_intel_artifact_operations_total",
				Help: "Total number of artifact saves and loads by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveTraining records a finished training run.
func (m *Metrics) ObserveTraining(model string, records int, d time.Duration, err error) {
	if m == nil {
		return
	}

	m.TrainingRuns.WithLabelValues(model, outcome(err)).Inc()
	if err != nil {
		return
	}
	m.TrainingDuration.WithLabelValues(model).Observe(d.Seconds())
	m.TrainingRecords.WithLabelValues(model).Set(float64(records))
}

// SetTrained sets the trained gauge for a model.
func (m *Metrics) SetTrained(model string, trained bool) {
	if m == nil {
		return
	}

	v := 0.0
	if trained {
		v = 1
	}
	m.ModelTrained.WithLabelValues(model).Set(v)
}

// ObserveQuery counts a query.
func (m *Metrics) ObserveQuery(operation string, ready bool) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(operation, fmt.Sprint(ready)).Inc()
}

// ObserveArtifact counts a save or load.
func (m *Metrics) ObserveArtifact(operation string, err error) {
	if m == nil {
		return
	}
	m.ArtifactOps.WithLabelValues(operation, outcome(err)).Inc()
}

// WriteTextfile writes the registry in the prometheus text format, atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
