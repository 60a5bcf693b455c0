package router

import (
	"context"

	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Router is the narrow capability every wave-sending caller routes
// through: fire-and-forget delivery, or a blocking exchange that
// resolves once the directed wave's bounce-backs policy is satisfied.
type Router interface {
	Route(ctx context.Context, w wave.Wave) error
	Exchange(ctx context.Context, w wave.Wave) (exchange.ReflectedAggregate, error)
}
