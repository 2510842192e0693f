package httpinterface

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stocksim",
		Name:      "orders_total",
		Help:      "Processed orders, partitioned by side, execution and outcome.",
	}, []string{"side", "execution", "status"})

	fillsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stocksim",
		Name:      "fills_total",
		Help:      "Matched fills.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stocksim",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, partitioned by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)
