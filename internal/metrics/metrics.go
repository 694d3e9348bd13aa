package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for upload dispatches.
type Observer interface {
	RecordUpload(provider string, duration time.Duration, sizeBytes int64, errKind string)
}

// PrometheusObserver exports upload metrics to Prometheus.
type PrometheusObserver struct {
	uploadDuration *prometheus.HistogramVec
	uploadErrors   *prometheus.CounterVec
	uploadBytes    *prometheus.CounterVec
}

// NewPrometheusObserver registers the upload metrics with reg, reusing
// collectors that are already registered.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "upload_gateway"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Latency of uploads through each provider.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider", "outcome"}),
		uploadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_errors_total",
			Help:      "Failed uploads by provider and error kind.",
		}, []string{"provider", "kind"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes successfully forwarded to each provider.",
		}, []string{"provider"}),
	}

	var err error
	if o.uploadDuration, err = register(reg, o.uploadDuration); err != nil {
		return nil, err
	}
	if o.uploadErrors, err = register(reg, o.uploadErrors); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, o.uploadBytes); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register upload metric: %w", err)
	}
	return c, nil
}

// RecordUpload tracks one dispatch. errKind is empty on success.
func (o *PrometheusObserver) RecordUpload(provider string, duration time.Duration, sizeBytes int64, errKind string) {
	if o == nil {
		return
	}
	outcome := "success"
	if errKind != "" {
		outcome = "error"
		o.uploadErrors.WithLabelValues(provider, errKind).Inc()
	} else {
		o.uploadBytes.WithLabelValues(provider).Add(float64(sizeBytes))
	}
	o.uploadDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

// Nop returns an Observer that discards everything.
func Nop() Observer { return nopObserver{} }

type nopObserver struct{}

func (nopObserver) RecordUpload(string, time.Duration, int64, string) {}
