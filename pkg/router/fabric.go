package router

import (
	"context"

	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Transport is the narrow outbound capability FabricRouter needs from
// the network layer (pkg/fabric): hand a wave to whatever lane it
// resolves to next.
type Transport interface {
	Deliver(ctx context.Context, w wave.Wave) error
}

// FabricRouter is the star-to-star standard router: waves the
// traversal engine resolves to an outbound direction leave through it.
// Its Send method matches traversal.FabricRouter's method set exactly,
// so *FabricRouter is itself a traversal.FabricRouter.
type FabricRouter struct {
	transport Transport
	exchanger *exchange.Exchanger
}

func NewFabricRouter(transport Transport, exchanger *exchange.Exchanger) *FabricRouter {
	return &FabricRouter{transport: transport, exchanger: exchanger}
}

// Send hands w to the transport. It is the method traversal.FabricRouter
// requires.
func (f *FabricRouter) Send(ctx context.Context, w wave.Wave) error {
	return f.transport.Deliver(ctx, w)
}

// Route is an alias for Send under the package's own Router interface,
// so a FabricRouter can stand in anywhere a Router is expected.
func (f *FabricRouter) Route(ctx context.Context, w wave.Wave) error {
	return f.Send(ctx, w)
}

// Exchange registers w with the exchanger before sending it over the
// transport, then blocks for the aggregate reflection.
func (f *FabricRouter) Exchange(ctx context.Context, w wave.Wave) (exchange.ReflectedAggregate, error) {
	ch, err := f.exchanger.Exchange(ctx, w)
	if err != nil {
		return exchange.ReflectedAggregate{}, err
	}
	if err := f.transport.Deliver(ctx, w); err != nil {
		return exchange.ReflectedAggregate{}, err
	}
	select {
	case agg := <-ch:
		return agg, nil
	case <-ctx.Done():
		return exchange.ReflectedAggregate{}, ctx.Err()
	}
}

// Reflected delivers an inbound reflection into this router's
// exchanger, waking any Exchange call waiting on it. Outside
// router_test.go nothing calls it: pkg/star's Field-layer handler hands
// reflections to the star's exchanger directly.
func (f *FabricRouter) Reflected(w wave.Wave) {
	f.exchanger.Reflected(w)
}
