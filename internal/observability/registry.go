package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// so components do not reach for the global Prometheus collectors directly.
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// CTA metrics
	IncrementHistoryAppends(family string)
	IncrementPixelDecisions(family, outcome string)
	IncrementPixels(pixel, status string)
	IncrementTrackersTextRenders(remainder string)

	// Store metrics
	IncrementStoreErrors(op string)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// CTA metrics
func (r *PrometheusRegistry) IncrementHistoryAppends(family string) {
	HistoryAppends.WithLabelValues(family).Inc()
}

func (r *PrometheusRegistry) IncrementPixelDecisions(family, outcome string) {
	PixelDecisions.WithLabelValues(family, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementPixels(pixel, status string) {
	PixelCount.WithLabelValues(pixel, status).Inc()
}

func (r *PrometheusRegistry) IncrementTrackersTextRenders(remainder string) {
	TrackersTextRenders.WithLabelValues(remainder).Inc()
}

// Store metrics
func (r *PrometheusRegistry) IncrementStoreErrors(op string) {
	StoreErrors.WithLabelValues(op).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementHistoryAppends(family string)                                {}
func (r *NoOpRegistry) IncrementPixelDecisions(family, outcome string)                       {}
func (r *NoOpRegistry) IncrementPixels(pixel, status string)                                 {}
func (r *NoOpRegistry) IncrementTrackersTextRenders(remainder string)                        {}
func (r *NoOpRegistry) IncrementStoreErrors(op string)                                       {}
