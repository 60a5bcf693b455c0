// Package registry implements spec §4.5's registry contract: the
// authoritative Point -> owning-Star map plus lifecycle status,
// property bag, and access evaluation. Local is a standalone in-memory
// registry, used by every non-Central star; Replicated
// backs a Central quorum with hashicorp/raft over a bbolt record
// store, mirroring the teacher's WarrenFSM/BoltStore split.
package registry

import (
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Registry is the full contract described in spec §4.5.
type Registry interface {
	// Locate returns the record for point, or a NotFound error.
	Locate(point starid.Point) (Record, error)

	// Assign sets point's owning star. Idempotent when star already
	// owns point; returns a Conflict error if a different star does.
	Assign(point starid.Point, kind starid.Kind, star string) error

	// Access evaluates agent's permissions on point.
	Access(agent wave.Agent, point starid.Point) (Access, error)

	// SetStatus updates point's lifecycle status.
	SetStatus(point starid.Point, status Status) error

	// SetProperties merges props into point's property bag.
	SetProperties(point starid.Point, props map[string]string) error

	// ListChildren returns every direct child of parent matching
	// selector (a nil selector matches everything).
	ListChildren(parent starid.Point, selector *starid.KindSelector) ([]Record, error)
}
