package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// Webhook authentication attempts by result and bounded reason.
	// result: ok|fail
	// reason (fail only): invalid_client_ip|header_not_found|signature_not_found|signature_mismatch
	WebhookAuthRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_auth_requests_total",
			Help: "Count of webhook authentication attempts by result and reason.",
		},
		[]string{"result", "reason"},
	)

	WebhookAuthDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_auth_duration_seconds",
			Help:    "Duration of webhook handling up to the authentication decision in seconds.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"result"},
	)

	DeliveryRecordErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_delivery_record_errors_total",
			Help: "Deliveries that could not be written to the audit log.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(WebhookAuthRequests, WebhookAuthDuration, DeliveryRecordErrors)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ObserveAuth records one authentication decision.
func ObserveAuth(result, reason string, d time.Duration) {
	WebhookAuthRequests.WithLabelValues(norm(result), norm(reason)).Inc()
	WebhookAuthDuration.WithLabelValues(norm(result)).Observe(d.Seconds())
}

func IncDeliveryRecordError() {
	DeliveryRecordErrors.Inc()
}
