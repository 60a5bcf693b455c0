package traversal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Engine owns one instance of each stateful layer handler plus the
// lookups needed to resolve drivers, topic handlers, hosting, and the
// fabric exit — and walks every wave injected into it according to
// spec §4.4.
type Engine struct {
	Layers   map[starid.Layer]LayerHandler
	Topics   TopicLookup
	Drivers  DriverLookup
	Registry Registry
	Kinds    KindLookup
	Fabric   FabricRouter
}

// NewEngine builds an Engine with no layer handlers registered; callers
// populate Layers (and optionally Topics) before calling Inject.
func NewEngine(registry Registry, kinds KindLookup, drivers DriverLookup, fabric FabricRouter) *Engine {
	return &Engine{
		Layers:   make(map[starid.Layer]LayerHandler),
		Drivers:  drivers,
		Registry: registry,
		Kinds:    kinds,
		Fabric:   fabric,
	}
}

func (e *Engine) RegisterLayer(layer starid.Layer, h LayerHandler) {
	e.Layers[layer] = h
}

// Inject begins a walk for w, entering at the given injector surface.
// w.To must resolve to a single surface (Single recipients); Ripple
// waves with Multi/Stars recipients are expected to be fanned out by
// the caller into one Inject per target before reaching the engine.
func (e *Engine) Inject(ctx context.Context, w wave.Wave, injector starid.Surface) error {
	to, ok := w.To.One()
	if !ok {
		return starerr.Protocol("traversal requires a single target surface")
	}

	plan := starid.StdPlan
	if k, ok := e.Kinds.KindOf(to.Point); ok {
		plan = starid.PlanFor(k)
	}
	res := resolve(e.Registry.HostedHere(to.Point), to, injector, w.From, plan)

	tr := &Transit{Wave: w, Target: to, Injector: injector, Current: injector.Layer, Direction: res.Direction}
	return e.walk(ctx, tr, res.Destination, plan)
}

// walk repeatedly visits the current layer and advances per planStep
// until the wave reaches its destination, is absorbed/reflected, or
// falls off the plan (handled per §4.4's "next is None" rules).
func (e *Engine) walk(ctx context.Context, tr *Transit, destination *starid.Layer, plan starid.TraversalPlan) (err error) {
	for {
		outcome, visitErr := e.visit(ctx, tr)
		if visitErr != nil {
			return e.reflectError(ctx, tr, visitErr)
		}

		switch outcome.Kind {
		case OutcomeAbsorb:
			return nil
		case OutcomeReflect:
			return e.reinject(ctx, *outcome.Reflection, tr.Target)
		}

		if destination != nil && tr.Current == *destination {
			return nil
		}

		next, ok := plan.Next(tr.Current, planStep(tr.Direction))
		if !ok {
			if tr.Direction == DirFabric {
				return e.Fabric.Send(ctx, tr.Wave)
			}
			log.Warn().
				Str("wave_id", tr.Wave.Id.String()).
				Str("layer", tr.Current.String()).
				Str("direction", tr.Direction.String()).
				Msg("traversal ran off its plan without reaching a destination or the fabric")
			return starerr.Protocol("traversal exhausted plan without destination")
		}
		tr.Current = next
	}
}

// visit dispatches topic handling (if registered) ahead of the
// layer-generic handler, then the layer itself (Core delegating directed
// waves to the resolved driver; a reflection passing Core goes to the
// Core layer handler, if any, like any other layer). A panic inside either is recovered into a 500
// Outcome per spec §4.4's failure table, so one misbehaving particle
// never takes the star down.
func (e *Engine) visit(ctx context.Context, tr *Transit) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("wave_id", tr.Wave.Id.String()).Msg("recovered panic in traversal layer")
			out = Outcome{}
			err = starerr.Internal("panic in traversal layer")
		}
	}()

	if tr.Wave.IsDirected() && e.Topics != nil {
		if th, ok := e.Topics.TopicHandler(tr.Target); ok {
			if !th.AllowsSource(tr.Wave.From) {
				return Outcome{}, starerr.Forbidden("topic handler rejects source " + tr.Wave.From.String())
			}
			return th.Handle(ctx, tr)
		}
	}

	if tr.Current == starid.LayerCore && tr.Wave.IsDirected() {
		driver, ok := e.Drivers.DriverFor(tr.Target.Point)
		if !ok {
			return Outcome{}, starerr.NotFound("no driver for " + tr.Target.Point.String())
		}
		bounce, err := driver.HandleCore(ctx, tr.Wave)
		if err != nil {
			return Outcome{}, err
		}
		if bounce.Kind == wave.CoreAbsorbed {
			return Absorb(), nil
		}
		return Reflect(synthesizeReflection(tr.Wave, tr.Target, bounce.Core)), nil
	}

	handler, ok := e.Layers[tr.Current]
	if !ok {
		return Continue(), nil
	}
	return handler.Handle(ctx, tr)
}

// reinject re-enters the engine with a produced reflection, walking it
// back out from the Core layer with its direction reversed, per §4.4.
func (e *Engine) reinject(ctx context.Context, reflection wave.Wave, from starid.Surface) error {
	return e.Inject(ctx, reflection, from.AtLayer(starid.LayerCore))
}

// reflectError converts an in-traversal error into a reflected wave at
// the point of detection and re-injects it, rather than unwinding the
// walk, per §4.4/§7's propagation policy.
func (e *Engine) reflectError(ctx context.Context, tr *Transit, cause error) error {
	status := starerr.Status(cause)
	core := wave.ErrCore(status, cause.Error())

	if tr.Wave.Kind == wave.KindSignal {
		// Signals never reflect; log and stop.
		log.Error().Err(cause).Str("wave_id", tr.Wave.Id.String()).Msg("error handling signal, no reflection possible")
		return nil
	}

	reflection := synthesizeReflection(tr.Wave, tr.Target, core)
	return e.reinject(ctx, reflection, tr.Target)
}

// synthesizeReflection builds the Pong/Echo wave answering w, using its
// Reflection descriptor when one was captured at construction (the
// normal case) and falling back to w.From otherwise.
func synthesizeReflection(w wave.Wave, from starid.Surface, core wave.ReflectedCore) wave.Wave {
	kind, ok := w.Kind.ReflectionKind()
	if !ok {
		kind = wave.KindPong
	}
	if w.Reflection != nil {
		return w.Reflection.Make(core, from, kind)
	}
	return wave.Wave{
		Id:           wave.NewId(),
		Kind:         kind,
		From:         from,
		To:           wave.Single(w.From),
		Method:       wave.Method{Class: wave.MethodHttp, Op: "REFLECT"},
		Body:         core.Body,
		ReflectionOf: w.Id,
		Status:       core.Status,
	}
}
