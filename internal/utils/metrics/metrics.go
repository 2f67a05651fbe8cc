package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_idp_requests_total",
		Help: "The total number of HTTP requests by method and path",
	}, []string{"method", "path", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sso_idp_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	SignInAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_idp_sign_in_attempts_total",
		Help: "The total number of first-step sign-in attempts",
	}, []string{"status"})

	CodeVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_idp_code_verifications_total",
		Help: "The total number of second-factor code verifications",
	}, []string{"status"})

	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_idp_signups_total",
		Help: "The total number of signup completions",
	}, []string{"status"})

	ConsentDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_idp_consent_decisions_total",
		Help: "The total number of consent decisions by outcome",
	}, []string{"outcome"})

	HydraRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_idp_hydra_requests_total",
		Help: "The total number of authorization server admin calls",
	}, []string{"operation", "status"})

	AuthCodeEmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sso_idp_auth_code_emails_total",
		Help: "The total number of authentication code emails",
	}, []string{"status"})

	DatabaseOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sso_idp_database_operation_duration_seconds",
		Help:    "The database operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
