package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// history entries computed, labelled by CTA family
	HistoryAppends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_cta_history_appends_total",
			Help: "Total CTA journey history entries computed",
		},
		[]string{"family"},
	)

	// pixel eligibility decisions, labelled by family and outcome
	PixelDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_pixel_decisions_total",
			Help: "Total pixel eligibility checks",
		},
		[]string{"family", "outcome"},
	)

	// pixels handed to the recorder, labelled by pixel name and status
	PixelCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_pixels_total",
			Help: "Total onboarding pixels recorded",
		},
		[]string{"pixel", "status"},
	)

	// trackers blocked messages rendered, labelled by remainder phrase
	TrackersTextRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_trackers_text_total",
			Help: "Total trackers blocked messages rendered",
		},
		[]string{"remainder"},
	)

	// store read/write failures, labelled by operation
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_store_errors_total",
			Help: "Total onboarding store failures",
		},
		[]string{"op"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		HistoryAppends,
		PixelDecisions,
		PixelCount,
		TrackersTextRenders,
		StoreErrors,
	)
}
