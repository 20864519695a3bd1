// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MembershipTransitions counts successful membership operations by name
	// (invite, email_invite, join, dismiss, leave, remove, transfer, archive).
	MembershipTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitmate",
		Name:      "membership_transitions_total",
		Help:      "Successful membership transitions.",
	}, []string{"transition"})

	// ItemActions counts successful item mutations and poll votes.
	ItemActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitmate",
		Name:      "item_actions_total",
		Help:      "Successful item actions.",
	}, []string{"action"})

	// EmailDispatches counts invite and reminder emails handed to the notifier.
	EmailDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitmate",
		Name:      "email_dispatches_total",
		Help:      "Invite and reminder emails by outcome.",
	}, []string{"kind", "result"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "splitmate",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
