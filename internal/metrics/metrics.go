// Package metrics holds the Prometheus instruments for the submission
// pipeline.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() in main.go is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Submissions counts finished coordinator runs by category and outcome
	// (accepted, duplicate, error).
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formrelay_submissions_total",
			Help: "Form submissions handled, by category and outcome.",
		}, []string{"category", "outcome"})

	// StageFailures counts absorbed failures per coordinator stage.
	StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formrelay_stage_failures_total",
			Help: "Failures absorbed by the submission coordinator, by category and stage.",
		}, []string{"category", "stage"})

	RelayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formrelay_relay_requests_total",
			Help: "Outbound relay calls, by result (sent, rejected, error).",
		}, []string{"result"})

	RelayDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "formrelay_relay_duration_seconds",
			Help:    "Latency of outbound relay calls.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		})
)

func init() {
	prometheus.MustRegister(
		Submissions,
		StageFailures,
		RelayRequests,
		RelayDuration,
	)
}
