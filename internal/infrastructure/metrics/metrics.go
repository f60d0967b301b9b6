// Package metrics holds the domain-level Prometheus collectors. HTTP request
// metrics live in the transport middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_cache_lookups_total",
			Help: "Link cache lookups by result (hit, miss, error, skipped)",
		},
		[]string{"result"},
	)

	CodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_code_collisions_total",
			Help: "Random short codes rejected by the store as already taken",
		},
	)

	LinksCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_links_created_total",
			Help: "Links created, by code source (alias, random)",
		},
		[]string{"source"},
	)

	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_rate_limit_decisions_total",
			Help: "Rate limiter decisions by action and outcome (allowed, denied, error)",
		},
		[]string{"action", "outcome"},
	)

	ClicksEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_clicks_enqueued_total",
			Help: "Click events handed to the queue, by outcome (ok, error)",
		},
		[]string{"outcome"},
	)

	ClickQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shortlink_click_queue_depth",
			Help: "Click events waiting in the queue, sampled by the worker",
		},
		[]string{"queue"},
	)

	ClicksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_clicks_processed_total",
			Help: "Click events drained by the worker, by outcome (stored, malformed, store_error, pop_error)",
		},
		[]string{"outcome"},
	)
)
