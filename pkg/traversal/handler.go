package traversal

import (
	"context"

	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Transit is the mutable state the engine threads through a single
// wave's walk: the wave itself, where it's headed, where it entered,
// and the layer/direction the walk is currently at.
type Transit struct {
	Wave      wave.Wave
	Target    starid.Surface
	Injector  starid.Surface
	Current   starid.Layer
	Direction Direction
}

// OutcomeKind discriminates what a layer handler did with a wave.
type OutcomeKind int

const (
	// OutcomeContinue lets the engine advance to the next layer in Plan.
	OutcomeContinue OutcomeKind = iota
	// OutcomeReflect stops the walk and re-injects the given reflection.
	OutcomeReflect
	// OutcomeAbsorb stops the walk silently (fire-and-forget).
	OutcomeAbsorb
)

// Outcome is what a LayerHandler or Driver returns after visiting a
// wave: continue to the next layer, produce a reflection, or absorb it.
type Outcome struct {
	Kind       OutcomeKind
	Reflection *wave.Wave
}

func Continue() Outcome                { return Outcome{Kind: OutcomeContinue} }
func Absorb() Outcome                  { return Outcome{Kind: OutcomeAbsorb} }
func Reflect(w wave.Wave) Outcome      { return Outcome{Kind: OutcomeReflect, Reflection: &w} }

// LayerHandler owns the behavior of exactly one layer (Field, Shell,
// Portal, Host, Guest); it's stateful per point internally (the spec's
// "owns per-point field/shell state"), so the engine holds one instance
// per layer rather than looking one up per point.
type LayerHandler interface {
	Handle(ctx context.Context, tr *Transit) (Outcome, error)
}

// LayerHandlerFunc adapts a plain function to LayerHandler.
type LayerHandlerFunc func(ctx context.Context, tr *Transit) (Outcome, error)

func (f LayerHandlerFunc) Handle(ctx context.Context, tr *Transit) (Outcome, error) { return f(ctx, tr) }

// TopicHandler answers waves addressed to a specific topic on a
// surface, ahead of the layer-generic pipeline. SourceSelector reports
// whether a given source surface is permitted to reach this handler;
// the engine synthesizes a Forbidden reflection when it isn't.
type TopicHandler interface {
	Handle(ctx context.Context, tr *Transit) (Outcome, error)
	AllowsSource(source starid.Surface) bool
}

// TopicLookup resolves the topic handler registered for a surface, if
// any.
type TopicLookup interface {
	TopicHandler(surface starid.Surface) (TopicHandler, bool)
}

// Driver is the Core-layer terminal: the per-kind business logic that
// the traversal engine delegates to once a wave reaches Core.
type Driver interface {
	HandleCore(ctx context.Context, w wave.Wave) (wave.CoreBounce, error)
}

// DriverLookup resolves the driver responsible for a point, per its
// kind (see pkg/router for the concrete Kind->Driver binding).
type DriverLookup interface {
	DriverFor(point starid.Point) (Driver, bool)
}

// Registry is the narrow slice of the registry contract (pkg/registry)
// the engine needs: whether a point is hosted on this star.
type Registry interface {
	HostedHere(point starid.Point) bool
}

// KindLookup resolves a point's Kind, which selects its TraversalPlan.
type KindLookup interface {
	KindOf(point starid.Point) (starid.Kind, bool)
}

// FabricRouter hands a wave off to the network transport when the
// traversal resolves to an outbound direction.
type FabricRouter interface {
	Send(ctx context.Context, w wave.Wave) error
}
