// SPDX-License-Identifier: MIT

// Package metrics records batch job outcomes as Prometheus collectors on a
// private registry and exports them in the node-exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/katalvlaran/planar/dataset"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder owns the registry and its collectors. It is safe for concurrent use.
type Recorder struct {
	reg *prometheus.Registry

	jobsTotal   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rmse        *prometheus.HistogramVec
	iterations  prometheus.Histogram
	refined     prometheus.Counter
	workersBusy prometheus.Gauge
}

// NewRecorder registers planar's collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		jobsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planar_jobs_total",
				Help: "Total number of processed jobs",
			},
			[]string{"kind", "status"}, // status: ok, error
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planar_job_duration_seconds",
				Help:    "Job processing duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"kind"},
		),
		rmse: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planar_job_rmse",
				Help:    "Final per-point RMSE of successful jobs",
				Buckets: []float64{1e-12, 1e-9, 1e-6, 1e-4, 1e-3, 1e-2, .1, 1, 10},
			},
			[]string{"kind"},
		),
		iterations: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "planar_lm_iterations",
				Help:    "Levenberg-Marquardt iterations of refined jobs",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 300},
			},
		),
		refined: f.NewCounter(
			prometheus.CounterOpts{
				Name: "planar_jobs_refined_total",
				Help: "Jobs whose DLT estimate needed refinement",
			},
		),
		workersBusy: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "planar_workers_busy",
				Help: "Number of workers currently running a job",
			},
		),
	}
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Observe records one job result.
func (r *Recorder) Observe(res dataset.Result) {
	kind := string(res.Kind)
	if kind == "" {
		kind = "unknown"
	}
	r.duration.WithLabelValues(kind).Observe(res.Elapsed.Seconds())
	if res.Error != "" {
		r.jobsTotal.WithLabelValues(kind, "error").Inc()
		return
	}
	r.jobsTotal.WithLabelValues(kind, "ok").Inc()
	r.rmse.WithLabelValues(kind).Observe(res.RMSE)
	if res.Refined {
		r.refined.Inc()
		r.iterations.Observe(float64(res.Iterations))
	}
}

// Busy marks a worker as running until the returned func is called.
func (r *Recorder) Busy() (done func()) {
	r.workersBusy.Inc()

	return r.workersBusy.Dec
}

// WriteTextfile atomically writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	return nil
}
