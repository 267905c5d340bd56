package chats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "venue_chat"
const metricsSubsystem = "chats"

var metricTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "transitions_total",
		Help:      "Chat status transitions by the target status",
	},
	[]string{"status"},
)

var metricRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "requests_total",
		Help:      "Chat service requests by the operation and the result kind",
	},
	[]string{"op", "result"},
)
