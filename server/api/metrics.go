package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	onboardings *prometheus.CounterVec
	rpcRequests *prometheus.CounterVec
	upstream    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		onboardings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paradex_dev",
			Name:      "onboardings_total",
			Help:      "Onboarding requests by result.",
		}, []string{"result"}),
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paradex_dev",
			Name:      "rpc_requests_total",
			Help:      "Fullnode RPC requests by method and result.",
		}, []string{"method", "result"}),
		upstream: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paradex_dev",
			Name:      "upstream_request_seconds",
			Help:      "Latency of calls forwarded to the upstream fullnode.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
