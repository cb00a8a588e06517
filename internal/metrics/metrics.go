// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionMintTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_mint_total",
			Help: "Cumulative number of session cookies minted.",
		})

	SessionMintErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_mint_errors_total",
			Help: "Cumulative number of failed mint attempts, by reason.",
		},
		[]string{"reason"}, // bad_input, rejected, provider
	)

	SessionStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_status_total",
			Help: "Cumulative number of status checks, by projected state.",
		},
		[]string{"state"}, // absent, unverified, verified
	)

	SessionClearTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_clear_total",
			Help: "Cumulative number of logout cookie clears.",
		})

	GuardRedirectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_redirect_total",
			Help: "Cumulative number of guard-issued redirects, by kind.",
		},
		[]string{"kind"}, // login, transit
	)

	WizardTurnsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wizard_turns_completed_total",
			Help: "Cumulative number of wizard turns locked.",
		})
)

func init() {
	prometheus.MustRegister(
		SessionMintTotal,
		SessionMintErrorsTotal,
		SessionStatusTotal,
		SessionClearTotal,
		GuardRedirectTotal,
		WizardTurnsCompletedTotal,
	)
}
