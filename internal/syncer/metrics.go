package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stayclose_sync_runs_total",
		Help: "Number of full resync passes started.",
	})
	syncFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stayclose_sync_fetch_errors_total",
		Help: "Resync passes aborted before scheduling (store fetch or bulk cancel failed).",
	})
	remindersScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stayclose_sync_reminders_scheduled_total",
		Help: "Reminders mirrored into the local schedule across all passes.",
	})
	remindersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stayclose_sync_reminders_failed_total",
		Help: "Reminders that failed to schedule; failures are isolated per item.",
	})
)
