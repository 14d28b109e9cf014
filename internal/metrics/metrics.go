package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of account registration attempts.",
		},
		[]string{"result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"method", "result"},
	)

	ParticipantRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "participant_registrations_total",
			Help: "Total number of event registrations.",
		},
		[]string{"source", "result"},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "login_rate_limited_total",
			Help: "Total number of login requests rejected by the rate limiter.",
		},
	)

	QueueMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_total",
			Help: "Messages published to or consumed from the broker.",
		},
		[]string{"queue", "direction", "result"},
	)
)

// MustRegister adds every collector to reg. It is called once by the serve
// command; collectors still count when they are not registered.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		ParticipantRegistrationsTotal,
		RateLimitedTotal,
		QueueMessagesTotal,
	)
}
