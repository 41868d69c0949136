package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtg_builds_total",
		Help: "Total number of graph builds, labelled by app and status.",
	}, []string{"app", "status"})

	BuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wtg_build_duration_ms",
		Help:    "Graph construction latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	}, []string{"app"})

	StageEdges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wtg_stage_edges",
		Help: "Distinct edges produced by each construction stage after pruning.",
	}, []string{"app", "stage"})

	PrunedEdges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtg_pruned_provenance_total",
		Help: "Provenance keys removed by the liveness sweep.",
	}, []string{"app"})

	InstalledEdges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wtg_installed_edges",
		Help: "Edges installed in the current graph of each app.",
	}, []string{"app"})

	BuildWarnings = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wtg_build_warnings",
		Help: "Diagnostics warnings raised by the last build of each app.",
	}, []string{"app"})

	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wtg_queries_total",
		Help: "Total number of queries, labelled by kind and status.",
	}, []string{"kind", "status"})

	QueriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wtg_queries_dropped_total",
		Help: "Total number of queries rejected due to a full queue.",
	})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wtg_query_duration_ms",
		Help:    "Query execution latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"kind"})

	PathsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wtg_paths_returned",
		Help:    "Number of paths returned per query.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wtg_queue_utilization_ratio",
		Help: "Current query queue utilization (0–1).",
	})
)
