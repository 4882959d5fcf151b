// Package metrics exposes worker counters and the /health + /metrics HTTP
// endpoint.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tenantreport/internal/storage"
)

const (
	metricPrefix = "tenantreport_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	submissionsTotal *prometheus.CounterVec
	draftSyncTotal   *prometheus.CounterVec
)

// Init registers the worker metrics. When repo is non-nil a gauge reporting
// the pending queue depth is registered alongside the counters.
func Init(repo *storage.SQLiteRepository) {
	registerOnce.Do(func() {
		submissionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "submissions_total",
				Help: "Total report submissions by result",
			},
			[]string{"result"},
		)
		draftSyncTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "draft_sync_total",
				Help: "Total background draft syncs by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(submissionsTotal, draftSyncTotal)

		if repo != nil {
			prometheus.MustRegister(prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: metricPrefix + "sync_queue_pending",
					Help: "Drafts waiting in the sync queue",
				},
				func() float64 {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					stats, err := repo.GetQueueStats(ctx)
					if err != nil {
						return 0
					}
					return float64(stats.Pending)
				},
			))
		}
	})
}

// SubmissionSucceeded counts one successful final submission.
func SubmissionSucceeded() { inc(submissionsTotal, resultSuccess) }

// SubmissionFailed counts one failed final submission.
func SubmissionFailed() { inc(submissionsTotal, resultError) }

// DraftSyncSucceeded counts one successful background sync.
func DraftSyncSucceeded() { inc(draftSyncTotal, resultSuccess) }

// DraftSyncFailed counts one failed background sync.
func DraftSyncFailed() { inc(draftSyncTotal, resultError) }

func inc(c *prometheus.CounterVec, result string) {
	if c == nil {
		return
	}
	c.WithLabelValues(result).Inc()
}
