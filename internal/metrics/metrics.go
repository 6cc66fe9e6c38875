package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VoteTransitionsTotal counts applied votes by target (comment/post),
	// requested action and the transition taken.
	VoteTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_transitions_total",
			Help: "Applied votes by target, action and transition",
		},
		[]string{"target", "action", "transition"},
	)

	// VoteApplyDuration tracks the full vote transaction, ledger write included.
	VoteApplyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vote_apply_duration_seconds",
			Help:    "Vote transaction duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"target"},
	)

	VoteConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vote_conflicts_total",
			Help: "Vote transactions retried after a concurrent ledger write",
		},
		[]string{"target"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)
