package router

import (
	"context"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/traversal"
	"github.com/starlane-io/starlane/pkg/wave"
)

// ParticleHandler is the Core-layer terminal for one particle. It
// matches traversal.Driver's method set exactly, so any ParticleHandler
// is itself a traversal.Driver.
type ParticleHandler interface {
	HandleCore(ctx context.Context, w wave.Wave) (wave.CoreBounce, error)
}

// Driver is the per-Kind binding a mesh registers once at startup: it
// knows how to initialize itself, which Kind it answers for, how to
// assign (create) a new particle of that kind, and how to hand back
// the ParticleHandler for an already-assigned particle.
type Driver interface {
	// Init prepares the driver — opening whatever storage or
	// connections its particles need — before it serves any wave.
	Init(ctx context.Context) error

	// Kind reports which Kind(s) this driver answers for.
	Kind() starid.KindSelector

	// Assign is called the first time a particle of this driver's kind
	// is hosted here, before any wave reaches it.
	Assign(ctx context.Context, point starid.Point) error

	// Particle returns the handler bound to one already-assigned
	// particle, if this driver is hosting it.
	Particle(point starid.Point) (ParticleHandler, bool)

	// Handler returns a driver-wide fallback handler, used when the
	// driver doesn't track per-particle state (Particle always misses).
	Handler() ParticleHandler
}

// KindLookup resolves the Kind of a point, matching
// traversal.KindLookup's method set.
type KindLookup interface {
	KindOf(point starid.Point) (starid.Kind, bool)
}

// DriverRegistry binds registered Drivers to points by Kind. Its
// DriverFor method matches traversal.DriverLookup's method set exactly,
// so *DriverRegistry satisfies that interface structurally.
type DriverRegistry struct {
	kinds   KindLookup
	drivers []Driver
}

func NewDriverRegistry(kinds KindLookup) *DriverRegistry {
	return &DriverRegistry{kinds: kinds}
}

// Register adds a driver, initializing it first. Order matters only
// when two drivers' selectors overlap — the first registered wins.
func (r *DriverRegistry) Register(ctx context.Context, d Driver) error {
	if err := d.Init(ctx); err != nil {
		return err
	}
	r.drivers = append(r.drivers, d)
	return nil
}

// HostLocal resolves the driver responsible for point's Kind and calls
// its Assign, per Driver.Assign's contract: the first time a particle
// of that kind is hosted here, before any wave reaches it. Outside
// driver_test.go nothing in this repository calls it.
func (r *DriverRegistry) HostLocal(ctx context.Context, point starid.Point) error {
	kind, ok := r.kinds.KindOf(point)
	if !ok {
		return starerr.NotFound("no kind registered for " + point.String())
	}
	for _, d := range r.drivers {
		if !d.Kind().IsMatch(kind) {
			continue
		}
		return d.Assign(ctx, point)
	}
	return starerr.NotFound("no driver for kind of " + point.String())
}

// DriverFor resolves the driver responsible for point's Kind, then the
// ParticleHandler it hands back for that specific point — falling back
// to the driver's generic Handler if it has no per-particle state for
// point. The return type is traversal.Driver (not ParticleHandler) so
// that *DriverRegistry satisfies traversal.DriverLookup directly.
func (r *DriverRegistry) DriverFor(point starid.Point) (traversal.Driver, bool) {
	kind, ok := r.kinds.KindOf(point)
	if !ok {
		return nil, false
	}
	for _, d := range r.drivers {
		if !d.Kind().IsMatch(kind) {
			continue
		}
		if handler, ok := d.Particle(point); ok {
			return handler, true
		}
		return d.Handler(), true
	}
	return nil, false
}
