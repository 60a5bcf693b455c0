package star

import (
	"context"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/traversal"
	"github.com/starlane-io/starlane/pkg/wave"
)

// fieldHandler returns the Field-layer LayerHandler every particle on
// this star shares: a reflected wave's walk always terminates here, at
// the originator's own Field surface (per resolve()'s case 2, the
// intra-particle shuttle stops once injector.Layer == to.Layer). This
// is where the reply finally reaches something that can wake up the
// caller blocked in exchange.Exchanger.Exchange — so this is the one
// place pkg/star wires a reflection into the exchanger, by calling
// s.Exch.Reflected directly. pkg/router's FabricRouter.Reflected does
// the same job for its own exchanger and is not called from here.
//
// Directed waves pass through three checks in order, each able to stop
// the walk before it reaches Shell: admission (a per-origin-point rate
// limit — Field sits immediately inward of Gravity, so it is the first
// stop common to every wave entering this star's traversal regardless
// of whether the walk originated on the fabric or locally), access
// control (the target point's permission grants for the wave's agent),
// then its bind config's request pipeline, if it has one.
func (s *Star) fieldHandler() traversal.LayerHandler {
	return traversal.LayerHandlerFunc(func(ctx context.Context, tr *traversal.Transit) (traversal.Outcome, error) {
		if !tr.Wave.IsDirected() {
			s.Exch.Reflected(tr.Wave)
			return traversal.Absorb(), nil
		}
		if err := s.admit.allow(tr.Wave.From.Point); err != nil {
			return traversal.Outcome{}, err
		}
		if err := s.checkAccess(tr); err != nil {
			return traversal.Outcome{}, err
		}
		return s.consultBind(tr)
	})
}

// checkAccess implements spec's "Field layer rejects waves whose
// method class requires a permission the agent lacks, synthesizing a
// 403 reflection" rule.
func (s *Star) checkAccess(tr *traversal.Transit) error {
	access, err := s.registry.Access(tr.Wave.Agent, tr.Target.Point)
	if err != nil {
		return err
	}
	if access.Allows(tr.Wave.Method.Class) {
		return nil
	}
	reason := access.DeniedReason
	if reason == "" {
		reason = tr.Wave.Agent.String() + " lacks " + tr.Wave.Method.Class.String() + " permission on " + tr.Target.Point.String()
	}
	return starerr.Forbidden(reason)
}

// loadBind reads point's serialized bind source from its registry
// properties and parses it. A point with no bind property, or a
// registry miss, simply has no bind config — that's the common case,
// not an error.
func (s *Star) loadBind(point starid.Point) (traversal.BindConfig, bool) {
	rec, err := s.registry.Locate(point)
	if err != nil {
		return traversal.BindConfig{}, false
	}
	src, ok := rec.Properties[traversal.BindPropertyKey]
	if !ok || src == "" {
		return traversal.BindConfig{}, false
	}
	cfg, err := traversal.ParseBindConfig(src)
	if err != nil {
		s.log.Warn().Err(err).Str("point", point.String()).Msg("ignoring malformed bind config")
		return traversal.BindConfig{}, false
	}
	return cfg, true
}

// consultBind loads the target point's bind config, if any, and runs
// its first matching route's request pipeline — spec's "Field and
// Shell layers load a particle's bind.Config ... and consult it before
// generic layer logic". Route.Stop's Call and Capture actions aren't
// wired here (see DESIGN.md): only Core (the default, implicit
// fall-through) and Respond (an immediate reflection, short-circuiting
// the rest of the walk) are implemented.
func (s *Star) consultBind(tr *traversal.Transit) (traversal.Outcome, error) {
	cfg, ok := s.loadBind(tr.Target.Point)
	if !ok {
		return traversal.Continue(), nil
	}

	route, ok := cfg.Resolve(tr.Wave.Method, tr.Target.Topic.String())
	if !ok {
		return traversal.Outcome{}, starerr.NotFound("no bind route matches " + tr.Wave.Method.String() + " on " + tr.Target.Point.String())
	}

	for _, step := range route.Request {
		if err := step.Check(tr.Wave.Body); err != nil {
			return traversal.Outcome{}, err
		}
		tr.Wave.Body = step.Apply(tr.Wave.Body)
	}

	if route.Stop.Kind != traversal.StopRespond {
		return traversal.Continue(), nil
	}
	if tr.Wave.Reflection == nil {
		// Signals have no reflection path; Respond has nothing to send.
		return traversal.Absorb(), nil
	}
	core := wave.Ok(wave.Empty())
	if route.Stop.Respond != nil {
		core = *route.Stop.Respond
	}
	kind, ok := tr.Wave.Kind.ReflectionKind()
	if !ok {
		kind = wave.KindPong
	}
	return traversal.Reflect(tr.Wave.Reflection.Make(core, tr.Target, kind)), nil
}
