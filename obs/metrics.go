// File: obs/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus counters for the loop and the HTTP layer, registered on
// the default registry. Embedders expose them however they expose the
// rest of their process metrics.

package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClosuresSubmitted counts closures handed to Base.Add.
	ClosuresSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hioload_loop_closures_submitted_total",
		Help: "Closures submitted to the loop from any goroutine",
	})

	// ClosuresExecuted counts closures the loop goroutine has run.
	ClosuresExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hioload_loop_closures_executed_total",
		Help: "Closures executed on the loop goroutine",
	})

	// TimersFired counts Delay tasks that reached execution.
	TimersFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hioload_loop_timers_fired_total",
		Help: "Delayed tasks that ran (cancelled tasks excluded)",
	})

	// RequestsStarted counts outbound requests issued.
	RequestsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hioload_http_requests_started_total",
		Help: "Outbound requests issued on a connection",
	})

	// RequestsFinished counts outbound requests by terminal state.
	RequestsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hioload_http_requests_finished_total",
		Help: "Outbound requests by terminal state",
	}, []string{"state"}) // state=completed|cancelled

	// ServedTotal counts inbound requests by dispatch outcome.
	ServedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hioload_http_served_total",
		Help: "Inbound requests by dispatch outcome",
	}, []string{"outcome"}) // outcome=handled|unmatched
)
