package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nerrad567/florabridge/internal/miflora"
)

const namespace = "florabridge"

// Recorder records cycle outcomes and the latest sensor values.
//
// Thread Safety: Safe for concurrent use; the collectors are.
type Recorder struct {
	registry *prometheus.Registry

	attempted     *prometheus.CounterVec
	succeeded     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	values        *prometheus.GaugeVec
	lastSuccess   *prometheus.GaugeVec
	publishFailed *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry, including the Go
// runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_attempted_total",
			Help:      "Polling cycles attempted per device since start.",
		}, []string{"device"}),
		succeeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_succeeded_total",
			Help:      "Polling cycles that produced a reading, per device.",
		}, []string{"device"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_failed_total",
			Help:      "Polling cycles that exhausted their attempts, per device.",
		}, []string{"device"}),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_value",
			Help:      "Latest value read from a sensor, by parameter.",
		}, []string{"device", "parameter"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful reading per device.",
		}, []string{"device"}),
		publishFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Readings the sink failed to deliver, per device.",
		}, []string{"device"}),
	}

	r.registry.MustRegister(
		r.attempted, r.succeeded, r.failed,
		r.values, r.lastSuccess, r.publishFailed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// CycleCompleted implements polling.Recorder. reading is nil for a failed cycle.
// The cycle counters therefore track device.Stats one for one.
func (r *Recorder) CycleCompleted(deviceID string, reading *miflora.Reading) {
	r.attempted.WithLabelValues(deviceID).Inc()
	if reading == nil {
		r.failed.WithLabelValues(deviceID).Inc()
		return
	}
	r.succeeded.WithLabelValues(deviceID).Inc()

	for _, v := range reading.Values {
		r.values.WithLabelValues(deviceID, v.Key).Set(v.Value)
	}
	r.lastSuccess.WithLabelValues(deviceID).Set(float64(reading.Timestamp.Unix()))
}

// PublishFailed implements polling.Recorder.
func (r *Recorder) PublishFailed(deviceID string) {
	r.publishFailed.WithLabelValues(deviceID).Inc()
}
