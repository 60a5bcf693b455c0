// Package traversal walks a wave through a particle's TraversalPlan,
// from the layer it was injected at toward a resolved destination,
// invoking each layer's handler along the way.
package traversal

import "github.com/starlane-io/starlane/pkg/starid"

// Direction is the traversal-level orientation of a wave's walk: toward
// Core (the particle's own logic), back out toward the session/Gravity
// side, or out of the star entirely onto the fabric.
type Direction int

const (
	DirCore Direction = iota
	DirOutward
	DirFabric
)

func (d Direction) String() string {
	switch d {
	case DirCore:
		return "Core"
	case DirOutward:
		return "Outward"
	case DirFabric:
		return "Fabric"
	default:
		return "Unknown"
	}
}

// planStep maps a traversal Direction onto the Inward/Outward axis
// starid.TraversalPlan understands: Core walks inward, Outward and
// Fabric both walk outward (Fabric simply keeps going once it runs off
// the front of the plan, instead of stopping at a destination layer).
func planStep(d Direction) starid.Direction {
	if d == DirCore {
		return starid.Inward
	}
	return starid.Outward
}
