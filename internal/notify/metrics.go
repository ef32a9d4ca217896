package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// notifyRunsTotal tracks job runs by result (ok, failed)
	notifyRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenta_notify_runs_total",
			Help: "Total number of discount notification job runs",
		},
		[]string{"result"},
	)

	// notifyMessagesTotal tracks messages by delivery result (sent, failed)
	notifyMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lenta_notify_messages_total",
			Help: "Total number of discount notification messages",
		},
		[]string{"result"},
	)

	// notifyStoreFailuresTotal counts stores whose SKUs could not be fetched
	notifyStoreFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lenta_notify_store_failures_total",
			Help: "Total number of stores skipped because their SKUs could not be fetched",
		},
	)
)
