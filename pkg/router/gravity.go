package router

import (
	"context"

	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Engine is the narrow slice of *traversal.Engine GravityRouter needs —
// kept as an interface so this package never imports pkg/traversal's
// concrete type, the same avoid-a-cycle reasoning pkg/traversal itself
// applies to Registry/KindLookup/DriverLookup.
type Engine interface {
	Inject(ctx context.Context, w wave.Wave, injector starid.Surface) error
}

// GravityRouter is the injector-facing standard router: waves injected
// by a local driver or client fall into the traversal engine's walk,
// the same way gravity pulls something down toward wherever the walk
// decides it belongs (locally or out to the fabric). Its injector is
// the star's own identity surface — distinct from both the sender's
// and the target's point — matching resolve()'s "star-originated"
// case: a driver hosted here addressing some other particle, not the
// particle's own outbound send.
type GravityRouter struct {
	engine    Engine
	exchanger *exchange.Exchanger
	injector  starid.Surface
}

func NewGravityRouter(engine Engine, exchanger *exchange.Exchanger, injector starid.Surface) *GravityRouter {
	return &GravityRouter{engine: engine, exchanger: exchanger, injector: injector}
}

// Route injects w and returns as soon as the engine has accepted it;
// it does not wait for any reflection.
func (g *GravityRouter) Route(ctx context.Context, w wave.Wave) error {
	return g.engine.Inject(ctx, w, g.injector)
}

// Exchange registers w with the exchanger before injecting it, so no
// reflection can race ahead of the registration, then blocks for the
// aggregate.
func (g *GravityRouter) Exchange(ctx context.Context, w wave.Wave) (exchange.ReflectedAggregate, error) {
	ch, err := g.exchanger.Exchange(ctx, w)
	if err != nil {
		return exchange.ReflectedAggregate{}, err
	}
	if err := g.engine.Inject(ctx, w, g.injector); err != nil {
		return exchange.ReflectedAggregate{}, err
	}
	select {
	case agg := <-ch:
		return agg, nil
	case <-ctx.Done():
		return exchange.ReflectedAggregate{}, ctx.Err()
	}
}
