package gateway

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/wallet-bridge/registry"
)

var (
	metricDispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet_bridge",
		Subsystem: "gateway",
		Name:      "dispatches_total",
		Help:      "Total dispatched requests by method and outcome.",
	}, []string{"method", "outcome"})

	metricDispatchSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wallet_bridge",
		Subsystem: "gateway",
		Name:      "dispatch_seconds",
		Help:      "Acceptance-to-delivery latency per request.",
		Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.25, 1, 2.5, 10},
	})

	metricLiveHandles = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "wallet_bridge",
		Subsystem: "registry",
		Name:      "live_handles",
		Help:      "Currently registered handles by object kind.",
	}, []string{"kind"})

	metricSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wallet_bridge",
		Subsystem: "gateway",
		Name:      "active_subscriptions",
		Help:      "Subscriptions with a running event pump.",
	})

	metricEventsDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wallet_bridge",
		Subsystem: "gateway",
		Name:      "events_delivered_total",
		Help:      "Total subscription event records posted to event ports.",
	})
)

func init() {
	prometheus.MustRegister(
		metricDispatches,
		metricDispatchSeconds,
		metricLiveHandles,
		metricSubscriptions,
		metricEventsDelivered,
	)
}

// handleGaugeObserver mirrors registry lifecycle events into the live
// handle gauge.
type handleGaugeObserver struct{}

func (handleGaugeObserver) OnHandleEvent(e registry.Event) {
	switch e.Type {
	case registry.EventRegistered:
		metricLiveHandles.WithLabelValues(e.Kind.String()).Inc()
	case registry.EventReleased:
		metricLiveHandles.WithLabelValues(e.Kind.String()).Dec()
	}
}
