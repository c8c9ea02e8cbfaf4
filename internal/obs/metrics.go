// Package obs exposes Prometheus metrics for the API.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication decisions made by the session gate, labeled by outcome
// (allowed, missing, invalid, revoked, unavailable).
var authDecisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fileden_auth_decisions_total",
		Help: "Session gate decisions by outcome.",
	},
	[]string{"outcome"},
)

var loginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fileden_logins_total",
		Help: "Login attempts by outcome.",
	},
	[]string{"outcome"},
)

// Init registers the metrics with the default registry.
func Init() {
	prometheus.MustRegister(authDecisionsTotal, loginsTotal)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAuthDecision counts one session-gate decision.
func RecordAuthDecision(outcome string) {
	authDecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordLogin counts one login attempt.
func RecordLogin(outcome string) {
	loginsTotal.WithLabelValues(outcome).Inc()
}
