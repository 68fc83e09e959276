// Package metrics provides Prometheus metrics for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests.
	// Labels: method, route, status
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remindme",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks request latency.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "remindme",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LiveSubscriptions is the number of open change subscriptions.
	// Labels: collection (reminders, shoppingList)
	LiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "remindme",
			Subsystem: "live",
			Name:      "subscriptions",
			Help:      "Currently open live change subscriptions",
		},
		[]string{"collection"},
	)

	// ChangesPublished counts published document changes.
	// Labels: collection, kind (upsert, delete), result (success, error)
	ChangesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remindme",
			Subsystem: "events",
			Name:      "changes_published_total",
			Help:      "Total number of document changes published to subscribers",
		},
		[]string{"collection", "kind", "result"},
	)

	// SubscribersDropped counts live subscriptions closed because their
	// buffer was full when a change was published.
	SubscribersDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "remindme",
			Subsystem: "events",
			Name:      "subscribers_dropped_total",
			Help:      "Total number of live subscriptions closed for falling behind",
		},
	)

	// CacheLookups counts list cache lookups.
	// Labels: cache (reminders, shopping), result (hit, miss, error)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remindme",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of list cache lookups",
		},
		[]string{"cache", "result"},
	)
)
