package faucet

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "faucet_requests_total", Help: "Disbursement requests by terminal outcome"},
		[]string{"net", "outcome"},
	)
	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "faucet_rejections_total", Help: "Business-rule denials by reason"},
		[]string{"net", "reason"},
	)
	disbursedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "faucet_disbursed_units_total", Help: "Token units disbursed"},
		[]string{"net"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, rejectionsTotal, disbursedTotal)
}
