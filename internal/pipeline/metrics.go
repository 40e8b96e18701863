package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "svdoc_runs_total",
		Help: "Generation runs by final status.",
	}, []string{"status"})

	filesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "svdoc_files_parsed_total",
		Help: "Source files parsed.",
	})

	definitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "svdoc_definitions_total",
		Help: "Definitions found, split by whether a documentation block was paired.",
	}, []string{"documented"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "svdoc_run_duration_seconds",
		Help:    "Wall time of generation runs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)
