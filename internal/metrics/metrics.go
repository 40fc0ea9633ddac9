package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeedbackOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "userfeedback_operations_total",
		Help: "User feedback operations by outcome.",
	}, []string{"operation", "status"})

	FeatureDisabled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "userfeedback_disabled_requests_total",
		Help: "Requests rejected because advanced ratings are disabled.",
	})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "code"})

	SettingsCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settings_cache_lookups_total",
		Help: "Settings cache lookups by result.",
	}, []string{"result"})
)

// MustRegister registers every collector of the service.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		FeedbackOperations,
		FeatureDisabled,
		HTTPRequestDuration,
		SettingsCacheLookups,
	)
}

// ObserveOperation counts a feedback operation outcome.
func ObserveOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	FeedbackOperations.WithLabelValues(operation, status).Inc()
}
