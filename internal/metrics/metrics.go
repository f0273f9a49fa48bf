// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminalart_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "terminalart_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// Rendering
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminalart_renders_total",
			Help: "Rendered documents by mode and format",
		},
		[]string{"mode", "format"},
	)

	RenderFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terminalart_render_failures_total",
			Help: "Documents that could not be composed",
		},
	)

	// Ledger reads
	LedgerReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminalart_ledger_reads_total",
			Help: "Per-identifier ledger reads by outcome",
		},
		[]string{"outcome"}, // "found" or "absent"
	)

	FallbackMerges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terminalart_fallback_merges_total",
			Help: "Windows whose target was synthesized from client fallback data",
		},
	)

	// Cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminalart_render_cache_lookups_total",
			Help: "Render cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss" or "error"
	)

	// Mirror
	MirrorIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "terminalart_mirror_indexed_total",
			Help: "Records written into the SQLite mirror",
		},
	)
)
