package traversal

import "github.com/starlane-io/starlane/pkg/starid"

// Resolution is the outcome of resolve(): where the walk should stop
// (nil if it runs to the fabric) and which direction it walks.
type Resolution struct {
	Destination *starid.Layer
	Direction   Direction
}

// resolve implements spec §4.4's four-case destination rule.
//
//   - hosted reports whether the target particle lives on this star.
//   - to is the wave's target surface (to.point, to.layer).
//   - injector is the surface the walk is entering at (typically
//     Gravity for fabric arrivals, Core for driver-originated waves).
//   - from is the wave's originating surface (wave.From).
//   - plan is the target particle's TraversalPlan, used to order
//     to.layer against injector.layer for case 2.
func resolve(hosted bool, to, injector, from starid.Surface, plan starid.TraversalPlan) Resolution {
	switch {
	case !hosted:
		// Case 1: not hosted here.
		return Resolution{Destination: nil, Direction: DirFabric}

	case to.Point.Equal(from.Point):
		// Case 2: intra-particle — the wave's sender and its target are
		// the same particle, so this walk is shuttling it between two of
		// its own layers.
		if injector.Layer == to.Layer {
			return Resolution{Destination: nil, Direction: DirFabric}
		}
		dest := to.Layer
		toIdx := plan.IndexOf(to.Layer)
		injIdx := plan.IndexOf(injector.Layer)
		if toIdx >= 0 && injIdx >= 0 && toIdx > injIdx {
			return Resolution{Destination: &dest, Direction: DirCore}
		}
		return Resolution{Destination: &dest, Direction: DirOutward}

	case injector.Point.Equal(from.Point):
		// Case 3: the sending particle is itself the injector — the wave
		// is leaving its own particle outbound, nothing local to visit.
		return Resolution{Destination: nil, Direction: DirFabric}

	default:
		// Case 4: star-originated (e.g. a driver on this star addressing
		// a locally hosted particle it doesn't own).
		dest := to.Layer
		return Resolution{Destination: &dest, Direction: DirCore}
	}
}
