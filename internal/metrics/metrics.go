// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync and seed outcome label values.
const (
	ResultCached    = "cached"
	ResultSynced    = "synced"
	ResultFailed    = "failed"
	ResultSucceeded = "succeeded"
)

// Metrics holds the collectors the sync path reports to.
type Metrics struct {
	Syncs            *prometheus.CounterVec
	UpstreamFailures *prometheus.CounterVec
	Seeds            *prometheus.CounterVec
	SyncDuration     prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Syncs: f.NewCounterVec(
			prometheus.CounterOpts{Name: "leaderboard_sync_total", Help: "Profile sync requests by result"},
			[]string{"result"},
		),
		UpstreamFailures: f.NewCounterVec(
			prometheus.CounterOpts{Name: "leaderboard_upstream_failures_total", Help: "Degraded GitHub fetches by resource"},
			[]string{"resource"},
		),
		Seeds: f.NewCounterVec(
			prometheus.CounterOpts{Name: "leaderboard_seed_total", Help: "Dynamic seed syncs by result"},
			[]string{"result"},
		),
		SyncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaderboard_sync_duration_seconds",
			Help:    "Duration of upstream profile syncs",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}
}

// NewNop returns collectors bound to a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
