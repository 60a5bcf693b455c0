package metrics

import (
	"strconv"
	"time"

	"github.com/starlane-io/starlane/pkg/fabric"
	"github.com/starlane-io/starlane/pkg/registry"
	"github.com/starlane-io/starlane/pkg/wrangler"
)

// Collector periodically samples a star's runtime state — its registry,
// wrangler table, and fabric mesh — into the package's Prometheus
// metrics, mirroring the teacher's own poll-and-set Collector.
type Collector struct {
	registry *registry.Replicated
	table    *wrangler.Table
	mesh     *fabric.Mesh
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector. reg may be nil on a
// star that hosts no Central registry node; table and mesh are always
// present on a running star.
func NewCollector(reg *registry.Replicated, table *wrangler.Table, mesh *fabric.Mesh) *Collector {
	return &Collector{
		registry: reg,
		table:    table,
		mesh:     mesh,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics on a 15-second tick.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectWranglerMetrics()
	c.collectFabricMetrics()
	c.collectRegistryMetrics()
}

func (c *Collector) collectWranglerMetrics() {
	if c.table == nil {
		return
	}
	StarsKnownTotal.Set(float64(c.table.Size()))
}

func (c *Collector) collectFabricMetrics() {
	if c.mesh == nil {
		return
	}
	NeighborsTotal.Set(float64(len(c.mesh.Neighbors())))
}

func (c *Collector) collectRegistryMetrics() {
	if c.registry == nil {
		return
	}

	if c.registry.IsLeader() {
		RaftLeader.Set(1)
	} else {
		RaftLeader.Set(0)
	}

	stats := c.registry.Stats()
	if lastIndex, ok := parseStat(stats, "last_log_index"); ok {
		RaftLastLogIndex.Set(lastIndex)
	}
	if appliedIndex, ok := parseStat(stats, "applied_index"); ok {
		RaftAppliedIndex.Set(appliedIndex)
	}

	records, err := c.registry.Records()
	if err != nil {
		return
	}

	counts := make(map[string]map[string]int)
	for _, rec := range records {
		kind := rec.Kind.String()
		status := rec.Status.String()
		if counts[kind] == nil {
			counts[kind] = make(map[string]int)
		}
		counts[kind][status]++
	}
	for kind, statuses := range counts {
		for status, count := range statuses {
			PointsTotal.WithLabelValues(kind, status).Set(float64(count))
		}
	}
}

func parseStat(stats map[string]string, key string) (float64, bool) {
	if stats == nil {
		return 0, false
	}
	raw, ok := stats[key]
	if !ok {
		return 0, false
	}
	val, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(val), true
}
