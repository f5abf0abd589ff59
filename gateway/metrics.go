package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests        *prometheus.CounterVec
	retries         prometheus.Counter
	refreshes       prometheus.Counter
	refreshFailures prometheus.Counter
}

// WithMetricsRegistry registers the gateway's counters with reg. Without
// this option the counters live on a private registry so that multiple
// gateways never collide.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(g *Gateway) {
		g.metrics = newMetrics(reg)
	}
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smartsales_gateway_requests_total",
			Help: "Outbound requests by method and response status.",
		}, []string{"method", "status"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "smartsales_gateway_retries_total",
			Help: "Requests resubmitted after a credential refresh.",
		}),
		refreshes: factory.NewCounter(prometheus.CounterOpts{
			Name: "smartsales_gateway_refreshes_total",
			Help: "Successful credential refreshes triggered by the gateway.",
		}),
		refreshFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "smartsales_gateway_refresh_failures_total",
			Help: "Credential refreshes that failed and forced a logout.",
		}),
	}
}
