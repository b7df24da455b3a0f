package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_login_attempts_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"outcome"}, // success, invalid_credentials, locked_out, error
	)

	authorizationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_authorization_decisions_total",
			Help: "Authorization guard decisions by permission and effect.",
		},
		[]string{"permission", "effect"},
	)

	sessionRestores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_session_restores_total",
			Help: "Attempts to resume a stored session by outcome.",
		},
		[]string{"outcome"}, // restored, none, invalid, actor_missing
	)
)
