package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	duration  prometheus.Histogram
	renewals  *prometheus.CounterVec
	retries   prometheus.Counter
	teardowns prometheus.Counter
}

// NewMetrics registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gophdash",
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Outbound requests by status code, or \"error\" for transport failures.",
		}, []string{"code"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gophdash",
			Subsystem: "pipeline",
			Name:      "request_duration_seconds",
			Help:      "Duration of single outbound attempts.",
			Buckets:   prometheus.DefBuckets,
		}),
		renewals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gophdash",
			Subsystem: "pipeline",
			Name:      "renewals_total",
			Help:      "Access token renewals triggered by 401 responses.",
		}, []string{"result"}),
		retries: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gophdash",
			Subsystem: "pipeline",
			Name:      "retries_total",
			Help:      "Requests resent after a successful renewal.",
		}),
		teardowns: f.NewCounter(prometheus.CounterOpts{
			Namespace: "gophdash",
			Subsystem: "pipeline",
			Name:      "session_teardowns_total",
			Help:      "Sessions cleared after renewal or resend failed.",
		}),
	}
}
