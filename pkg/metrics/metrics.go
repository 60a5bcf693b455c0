package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry metrics
	PointsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "starlane_points_total",
			Help: "Total number of registry points by kind and status",
		},
		[]string{"kind", "status"},
	)

	StarsKnownTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starlane_stars_known_total",
			Help: "Total number of peer stars known to the wrangler table",
		},
	)

	NeighborsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starlane_neighbors_total",
			Help: "Total number of directly connected fabric lanes",
		},
	)

	// Raft metrics (Central registry)
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starlane_raft_is_leader",
			Help: "Whether this star is the registry's Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftLastLogIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starlane_raft_last_log_index",
			Help: "Current Raft log index for the registry",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starlane_raft_applied_index",
			Help: "Last applied Raft log index for the registry",
		},
	)

	// Wave traversal metrics
	WavesRoutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starlane_waves_routed_total",
			Help: "Total number of waves routed by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	WaveTraversalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starlane_wave_traversal_duration_seconds",
			Help:    "Time a wave spends in the traversal engine, from enqueue to terminal delivery",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	ExchangesPendingTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starlane_exchanges_pending_total",
			Help: "Total number of Exchange calls currently waiting on a reflection",
		},
	)

	// Search metrics
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starlane_searches_total",
			Help: "Total number of flood searches by outcome",
		},
		[]string{"outcome"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starlane_search_duration_seconds",
			Help:    "Time taken for a flood search to settle or time out",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Fabric metrics
	FabricDialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starlane_fabric_dials_total",
			Help: "Total number of outbound lane dials by outcome",
		},
		[]string{"outcome"},
	)

	FabricFramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starlane_fabric_frames_total",
			Help: "Total number of frames sent or received over fabric lanes",
		},
		[]string{"direction"},
	)

	// Raft operation metrics (registry)
	RaftApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starlane_registry_apply_duration_seconds",
			Help:    "Time taken to apply a registry Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(PointsTotal)
	prometheus.MustRegister(StarsKnownTotal)
	prometheus.MustRegister(NeighborsTotal)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftLastLogIndex)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(WavesRoutedTotal)
	prometheus.MustRegister(WaveTraversalDuration)
	prometheus.MustRegister(ExchangesPendingTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(FabricDialsTotal)
	prometheus.MustRegister(FabricFramesTotal)
	prometheus.MustRegister(RaftApplyDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
