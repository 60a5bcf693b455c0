package star

import (
	"context"
	"sync"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/traversal"
	"github.com/starlane-io/starlane/pkg/wave"
)

// shellSession is the per-point state the Shell layer owns, per spec's
// "Stateful; owns per-point shell state" (spec.md:108). Grounded on
// pkg/star/admission.go's per-key map-under-mutex shape.
type shellSession struct {
	scope wave.Scope
}

// shell implements spec's three named Shell layer responsibilities:
// session/scope propagation, from-point enforcement, and wave
// re-writing on outbound. One instance is shared by every particle
// hosted on this star, keyed by point, the same way admission keys its
// token buckets by origin point.
type shell struct {
	mu       sync.Mutex
	sessions map[string]shellSession
}

func newShell() *shell {
	return &shell{sessions: make(map[string]shellSession)}
}

// handler returns the Shell-layer LayerHandler. Directed waves are
// checked for from-point identity and have their scope propagated
// against the target's established session; reflected waves have their
// From surface rewritten to appear to originate at the target's own
// Shell, per spec's "wave re-writing on outbound".
func (s *shell) handler() traversal.LayerHandler {
	return traversal.LayerHandlerFunc(func(ctx context.Context, tr *traversal.Transit) (traversal.Outcome, error) {
		if !tr.Wave.IsDirected() {
			tr.Wave.From = starid.NewSurface(tr.Target.Point, starid.LayerShell, starid.NoTopic)
			return traversal.Continue(), nil
		}

		if err := enforceFromPoint(tr.Wave); err != nil {
			return traversal.Outcome{}, err
		}

		tr.Wave.Scope = s.propagateScope(tr.Target.Point, tr.Wave.Scope)
		return traversal.Continue(), nil
	})
}

// enforceFromPoint rejects a directed wave whose agent claims to be a
// particle other than the one it's physically being sent from. It's
// stateless by design: a session-scoped "lock to whichever point first
// reaches this particle" rule would permanently block every legitimate
// caller that arrives after the first, which is not what from-point
// enforcement means here — it's an identity check per wave, not an
// exclusivity lease over the particle.
func enforceFromPoint(w wave.Wave) error {
	if w.Agent.Kind != wave.AgentPoint {
		return nil
	}
	if w.Agent.Point == w.From.Point.String() {
		return nil
	}
	return starerr.Forbidden("agent " + w.Agent.Point + " does not match sending point " + w.From.Point.String())
}

// propagateScope implements spec's "session/scope propagation": the
// first scope seen for a point becomes its established session scope.
// A later wave arriving unrestricted inherits any narrower scope
// already established for that point, so a restriction set early in a
// session carries forward even once the caller stops asserting it
// explicitly; a wave that arrives already narrower than the
// established scope is left alone and also becomes the new baseline.
func (s *shell) propagateScope(point starid.Point, incoming wave.Scope) wave.Scope {
	key := point.Hash()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[key]
	if !ok {
		s.sessions[key] = shellSession{scope: incoming}
		return incoming
	}
	if incoming.Unrestricted() && !existing.scope.Unrestricted() {
		return existing.scope
	}
	s.sessions[key] = shellSession{scope: incoming}
	return incoming
}
