package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pronostic"

// Recorder counts batch outcomes. A nil Recorder drops every observation.
type Recorder struct {
	registry    *prometheus.Registry
	fixtures    *prometheus.CounterVec
	predictions *prometheus.CounterVec
	runs        *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,
		fixtures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_fixtures_total",
			Help:      "Fixtures handled by the ingestion pipeline, by outcome.",
		}, []string{"outcome"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settled_predictions_total",
			Help:      "Predictions handled by the settlement driver, by outcome.",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Completed batch job runs, by job.",
		}, []string{"job"}),
	}
	registry.MustRegister(
		r.fixtures,
		r.predictions,
		r.runs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) FixtureHandled(outcome string) {
	if r == nil {
		return
	}
	r.fixtures.WithLabelValues(outcome).Inc()
}

func (r *Recorder) PredictionHandled(outcome string) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) JobCompleted(job string) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(job).Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
