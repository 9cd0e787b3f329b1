package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// productsUpserted counts documents written to the index.
	productsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchsync_products_upserted_total",
			Help: "Total number of product documents upserted into the search index",
		},
	)

	// productsDeleted counts documents removed from the index.
	productsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchsync_products_deleted_total",
			Help: "Total number of product documents deleted from the search index",
		},
	)

	// productSyncFailures counts per-product pipeline failures.
	productSyncFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchsync_product_sync_failures_total",
			Help: "Total number of per-product sync failures",
		},
	)

	// eventDuration observes end-to-end change event handling time.
	eventDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "searchsync_event_duration_seconds",
			Help:    "Duration of change event handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
