// Package metrics holds the Prometheus collectors for the HTTP surface and the
// account lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"},
	)

	Bans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_temporary_bans_total",
			Help: "Temporary bans applied after repeated login failures",
		},
	)

	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_issued_total",
			Help: "OTP codes issued by purpose and delivery result",
		},
		[]string{"purpose", "delivery"},
	)

	PaymentResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_resolutions_total",
			Help: "Order token resolutions by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	StoreConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_version_conflicts_total",
			Help: "Optimistic concurrency conflicts on account writes",
		},
	)
)
