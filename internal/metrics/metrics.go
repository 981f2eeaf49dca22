// Package metrics holds the Prometheus collectors recorded by the object store client.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "objectstore"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics records operation counts, latencies and upload concurrency.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	InFlight   prometheus.Gauge
	BatchSize  prometheus.Histogram
}

// New creates the collectors and registers them with reg. Collectors already
// registered by another client on the same registry are shared.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total object store operations by operation and result.",
		}, []string{"op", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Object store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uploads_in_flight",
			Help:      "Batch uploads currently in flight.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Items submitted per batch upload.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		}),
	}
	if reg == nil {
		return m
	}

	m.Operations = register(reg, m.Operations)
	m.Duration = register(reg, m.Duration)
	m.InFlight = register(reg, m.InFlight)
	m.BatchSize = register(reg, m.BatchSize)
	return m
}

// Observe records the result and latency of one operation started at start.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.Operations.WithLabelValues(op, result).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// UploadStarted marks a batch upload as in flight.
func (m *Metrics) UploadStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

// UploadFinished marks a batch upload as done.
func (m *Metrics) UploadFinished() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}

// ObserveBatch records the size of a submitted batch.
func (m *Metrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
