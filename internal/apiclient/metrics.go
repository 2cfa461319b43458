package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "erp_client",
			Name:      "requests_total",
			Help:      "Requests sent to the ERP API by method and response code, code is \"error\" when no response arrived.",
		},
		[]string{"method", "code"},
	)

	tokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "erp_client",
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)

	retriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "erp_client",
			Name:      "retries_total",
			Help:      "Requests re-issued after an access token refresh.",
		},
	)
)

const (
	refreshOutcomeSuccess      = "success"
	refreshOutcomeFailure      = "failure"
	refreshOutcomeMissingToken = "missing_token"
	refreshOutcomeSkipped      = "skipped"
)
