package connector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gumcp",
		Name:      "tool_invocations_total",
		Help:      "Tool invocations by provider and tool.",
	}, []string{"provider", "tool"})

	invocationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gumcp",
		Name:      "tool_invocation_failures_total",
		Help:      "Failed tool invocations by provider and tool.",
	}, []string{"provider", "tool"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gumcp",
		Name:      "tool_invocation_duration_seconds",
		Help:      "Tool invocation latency by provider.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
)
