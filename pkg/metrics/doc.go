/*
Package metrics provides Prometheus metrics collection and exposition for a
running star.

The metrics package defines and registers Starlane's metrics using the
Prometheus client library, providing observability into a star's registry
state, wrangler table, fabric connectivity, and wave traversal latency.
Metrics are exposed via HTTP endpoint for scraping by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Collector                      │          │
	│  │  - Polls registry.Replicated (raft/records) │          │
	│  │  - Polls wrangler.Table (known peer stars)  │          │
	│  │  - Polls fabric.Mesh (neighbor lanes)       │          │
	│  │  - Runs on a 15s ticker                     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint               │          │
	│  │  - Path: /metrics                            │          │
	│  │  - Format: Prometheus text exposition         │          │
	│  │  - Handler: promhttp.Handler()                │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

Registry Metrics:

starlane_points_total{kind, status}:
  - Type: Gauge
  - Description: Total registry points by kind and status
  - Example: starlane_points_total{kind="Mechtron",status="Ready"} 12

starlane_stars_known_total:
  - Type: Gauge
  - Description: Total peer stars known to the wrangler table

starlane_neighbors_total:
  - Type: Gauge
  - Description: Total directly connected fabric lanes

Raft Metrics:

starlane_raft_is_leader:
  - Type: Gauge
  - Description: Whether this star holds registry Raft leadership (1/0)

starlane_raft_last_log_index / starlane_raft_applied_index:
  - Type: Gauge
  - Description: Raft log position for the registry quorum

Wave Metrics:

starlane_waves_routed_total{kind, outcome}:
  - Type: Counter
  - Description: Waves routed by kind and outcome (delivered/bounced/dropped)

starlane_wave_traversal_duration_seconds{kind}:
  - Type: Histogram
  - Description: Time a wave spends in the traversal engine

starlane_exchanges_pending_total:
  - Type: Gauge
  - Description: Exchange calls currently awaiting a reflection

Search Metrics:

starlane_searches_total{outcome}:
  - Type: Counter
  - Description: Flood searches by outcome (satisfied/timeout)

starlane_search_duration_seconds:
  - Type: Histogram
  - Description: Time for a flood search to settle or time out

Fabric Metrics:

starlane_fabric_dials_total{outcome}:
  - Type: Counter
  - Description: Outbound lane dials by outcome

starlane_fabric_frames_total{direction}:
  - Type: Counter
  - Description: Frames sent or received over fabric lanes

starlane_registry_apply_duration_seconds:
  - Type: Histogram
  - Description: Time to apply a registry Raft log entry

# Usage

	import "github.com/starlane-io/starlane/pkg/metrics"

	metrics.PointsTotal.WithLabelValues("Mechtron", "Ready").Set(12)
	metrics.WavesRoutedTotal.WithLabelValues("Ping", "delivered").Inc()

	timer := metrics.NewTimer()
	// ... route a wave ...
	timer.ObserveDurationVec(metrics.WaveTraversalDuration, "Ping")

	http.Handle("/metrics", metrics.Handler())

Running the Collector:

	coll := metrics.NewCollector(reg, table, mesh)
	coll.Start()
	defer coll.Stop()

# Integration Points

This package integrates with:

  - pkg/registry: Raft leadership, applied index, and point counts
  - pkg/wrangler: known peer star counts
  - pkg/fabric: neighbor lane counts
  - Prometheus: scrapes /metrics

WavesRoutedTotal, WaveTraversalDuration, ExchangesPendingTotal,
SearchesTotal, SearchDuration, FabricDialsTotal, FabricFramesTotal and
RaftApplyDuration are registered and exported, but no package in this
repository updates them, so they stay at zero.

# Design Patterns

Package Init Registration:
  - All metrics registered in init(), MustRegister panics on duplicate

Label Discipline:
  - Labels are bounded (kind, status, outcome, direction) — never point
    names or wave IDs, which are unbounded

Timer Pattern:
  - Create a Timer at operation start, observe duration to a histogram
    when the operation completes

# Health and Readiness

See health.go for component health tracking (RegisterComponent,
UpdateComponent) and the /health, /ready, /live HTTP handlers. Readiness
treats raft, fabric, and api as critical components — a star isn't ready
to serve until its registry quorum, fabric listener, and request surface
have all reported healthy.

# See Also

  - Prometheus documentation: https://prometheus.io/docs/
  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
