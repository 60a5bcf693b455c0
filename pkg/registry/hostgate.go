package registry

import (
	"errors"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// HostGate adapts any Registry plus a star key into pkg/traversal's
// narrow Registry and KindLookup interfaces, so the traversal engine
// never needs to import this package directly.
type HostGate struct {
	Registry Registry
	StarKey  string
}

func (g HostGate) HostedHere(point starid.Point) bool {
	rec, err := g.Registry.Locate(point)
	if err != nil {
		return false
	}
	return rec.Owner == g.StarKey
}

func (g HostGate) KindOf(point starid.Point) (starid.Kind, bool) {
	rec, err := g.Registry.Locate(point)
	if err != nil {
		if errors.Is(err, starerr.ErrNotFound) {
			return starid.Kind{}, false
		}
		return starid.Kind{}, false
	}
	return rec.Kind, true
}

// Locate forwards to the wrapped Registry, so HostGate also satisfies
// the wider contract pkg/star's Field layer needs for bind-config and
// access lookups, without that package depending on registry.Registry
// directly.
func (g HostGate) Locate(point starid.Point) (Record, error) {
	return g.Registry.Locate(point)
}

// Access forwards to the wrapped Registry.
func (g HostGate) Access(agent wave.Agent, point starid.Point) (Access, error) {
	return g.Registry.Access(agent, point)
}
