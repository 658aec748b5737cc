// Package metrics provides Prometheus metrics for the booster value service.
// Scrape these at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booster_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Scryfall API Metrics
	ScryfallRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_scryfall_requests_total",
			Help: "Total number of Scryfall API requests by response status",
		},
		[]string{"status"}, // HTTP status code or "error"
	)

	ScryfallRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booster_scryfall_retries_total",
			Help: "Scryfall requests retried after a rate limit or transport failure",
		},
	)

	ScryfallRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booster_scryfall_request_duration_seconds",
			Help:    "Scryfall API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	// Source Resolution Metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_resolutions_total",
			Help: "Card pool resolutions by the source that satisfied them",
		},
		[]string{"source"}, // "memory", "cache", "live", "failed"
	)

	SupplementaryPoolFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_supplementary_pool_failures_total",
			Help: "Supplementary pools skipped because no source could provide them",
		},
		[]string{"pool"},
	)

	MemoEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booster_memo_entries",
			Help: "Number of resolved card pools held in memory",
		},
	)

	// Lookup Metrics
	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booster_lookup_duration_seconds",
			Help:    "Time taken to answer a lookup, including source resolution",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
	)

	PackExpectedValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booster_pack_expected_value_usd",
			Help: "Most recently computed expected pack value by set and booster",
		},
		[]string{"set", "booster"},
	)

	StaleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booster_stale_responses_total",
			Help: "Lookup responses dropped because a newer request superseded them",
		},
	)

	// Cache Refresh Metrics
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_cache_refresh_sets_total",
			Help: "Sets processed by the cache refresher by result",
		},
		[]string{"result"}, // "success" or "failed"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booster_cache_refresh_duration_seconds",
			Help:    "Time taken to refresh the cache for every configured set",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)
