package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "log_aggregator"

var (
	AlertsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_received_total",
		Help:      "Alerts received through the webhook, by alert status.",
	}, []string{"status"})

	AlertDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_duplicates_total",
		Help:      "Alerts resolved to an existing bundle inside the dedup window.",
	})

	ContextFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "context_fetch_failures_total",
		Help:      "Failed context fetches, by source.",
	}, []string{"source"})

	BundlesPurged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bundles_purged_total",
		Help:      "Alert context bundles deleted, by purge reason.",
	}, []string{"reason"})
)
