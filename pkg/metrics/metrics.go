package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationAttempts records registration submissions by result
	// (accepted|invalid_email|conflict|university_not_found|error).
	RegistrationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dolap_registration_attempts_total",
			Help: "Total number of registration submissions",
		},
		[]string{"result"},
	)

	// VerificationAttempts counts email verification attempts by result
	// (success|wrong_code|expired|no_entry|error).
	VerificationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dolap_verification_attempts_total",
			Help: "Total number of email verification attempts",
		},
		[]string{"result"},
	)

	// CodeDeliveries counts verification code delivery attempts by result
	// (sent|fallback|failed).
	CodeDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dolap_code_deliveries_total",
			Help: "Total number of verification code delivery attempts",
		},
		[]string{"result"},
	)

	// AuthAttempts records login attempts by kind (user|admin) and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dolap_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"kind", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dolap_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
