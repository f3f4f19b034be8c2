package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportsCreatedTotal counts transparency reports persisted by the
	// report-creation flow.
	ReportsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veriscope",
		Subsystem: "reports",
		Name:      "created_total",
		Help:      "Total number of transparency reports created.",
	})

	// AIRequestsTotal counts AI gateway calls by outcome. A "fallback"
	// result means the locally generated substitute was used.
	AIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veriscope",
		Subsystem: "ai",
		Name:      "requests_total",
		Help:      "Total number of AI gateway requests, labeled by result.",
	}, []string{"result"})

	// AIRequestDurationSeconds is the wall time of a single AI service
	// call, failed attempts included.
	AIRequestDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "veriscope",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI service calls.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// AuthFailuresTotal counts rejected bearer credentials.
	AuthFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veriscope",
		Subsystem: "api",
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by the auth middleware.",
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsCreatedTotal,
			AIRequestsTotal,
			AIRequestDurationSeconds,
			AuthFailuresTotal,
		)
	})
}
