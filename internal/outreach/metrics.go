package outreach

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	emailsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobmail",
			Subsystem: "outreach",
			Name:      "emails_total",
			Help:      "Outreach emails by delivery result.",
		},
		[]string{"mode", "result"}, // sent, dry_run, failed
	)

	postingsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobmail",
			Subsystem: "outreach",
			Name:      "postings_total",
			Help:      "Postings processed by outcome.",
		},
		[]string{"mode", "outcome"}, // emailed, filtered, skipped, error
	)

	runsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobmail",
			Subsystem: "outreach",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		},
		[]string{"mode", "outcome"}, // ok, failed, skipped
	)

	runDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobmail",
			Subsystem: "outreach",
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs.",
			Buckets:   []float64{10, 30, 60, 300, 900, 1800, 3600, 7200},
		},
		[]string{"mode"},
	)
)
