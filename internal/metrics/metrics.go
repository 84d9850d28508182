// Package metrics records operational metrics for the climate pipelines behind
// a small backend-agnostic interface.
//
// A global backend defaults to a no-op implementation, so instrumentation is
// always safe to call. Concrete systems (Prometheus Pushgateway, DogStatsD)
// live in subpackages and are installed once by the CLI with SetBackend.
//
// Every metric carries the pipeline ("job") label. Step metrics add the step
// name and outcome; row metrics add the row kind ("read", "missing",
// "predicted", "statements", ...).
package metrics

import (
	"sync"
	"time"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names shared by all backends.
const (
	StepTotal    = "climate_step_total"
	StepDuration = "climate_step_duration_seconds"
	RowsTotal    = "climate_rows_total"
	ModelGauge   = "climate_model_value"
)

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-style value.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge records the latest value of a measurement.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) SetGauge(string, float64, Labels)         {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a pipeline step and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// Step runs fn as a named step and records it. It returns fn's error.
func Step(job, step string, fn func() error) error {
	start := time.Now()
	err := fn()
	RecordStep(job, step, err, time.Since(start))
	return err
}

// RecordRows adds n rows of the given kind. Non-positive counts are ignored.
func RecordRows(job, kind string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{"job": job, "kind": kind})
}

// RecordModel publishes a final model measurement such as "loss", "val_loss"
// or "r_squared".
func RecordModel(job, measure string, v float64) {
	current().SetGauge(ModelGauge, v, Labels{"job": job, "measure": measure})
}
