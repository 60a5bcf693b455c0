package star

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/traversal"
	"github.com/starlane-io/starlane/pkg/wave"
)

func TestAdmissionDisabledByDefault(t *testing.T) {
	a := newAdmission(0, 0)
	origin := mustPoint(t, "client:one")
	for i := 0; i < 1000; i++ {
		require.NoError(t, a.allow(origin))
	}
}

func TestAdmissionLimitsBurst(t *testing.T) {
	a := newAdmission(1, 2)
	origin := mustPoint(t, "client:one")

	require.NoError(t, a.allow(origin))
	require.NoError(t, a.allow(origin))

	err := a.allow(origin)
	require.Error(t, err)
	assert.True(t, errors.Is(err, starerr.ErrRateLimited))
}

func TestAdmissionTracksOriginsIndependently(t *testing.T) {
	a := newAdmission(1, 1)
	one := mustPoint(t, "client:one")
	two := mustPoint(t, "client:two")

	require.NoError(t, a.allow(one))
	require.Error(t, a.allow(one))
	require.NoError(t, a.allow(two))
}

func TestAdmissionSweepClearsOversizedTable(t *testing.T) {
	a := newAdmission(1, 1)
	for i := 0; i < 10001; i++ {
		p := mustPoint(t, "client:"+string(rune('a'+(i%26)))+string(rune('a'+(i/26%26)))+string(rune('a'+(i/676%26))))
		_ = a.allow(p)
	}
	a.sweep()
	assert.Empty(t, a.limiters)
}

// TestFieldHandlerEnforcesAdmission exercises the Field LayerHandler
// directly rather than a full exchange round trip, since admission is
// the only thing under test here and the handler's contract (an error
// for a rejected directed wave, Continue otherwise) doesn't depend on
// where in a larger walk it's called from.
func TestFieldHandlerEnforcesAdmission(t *testing.T) {
	receiver := mustPoint(t, "my-space:receiver")
	sender := mustPoint(t, "my-space:sender")
	kind := starid.NewKind(starid.KindMechtron)

	s, _, _ := buildStar(t, receiver, kind)
	s.admit = newAdmission(1, 1)

	from := starid.NewSurface(sender, starid.LayerShell, starid.NoTopic)
	to := starid.NewSurface(receiver, starid.LayerCore, starid.NoTopic)

	newPing := func() wave.Wave {
		w, err := wave.NewDirectedProto(wave.KindPing).
			From(from).To(wave.Single(to)).
			Method(wave.Method{Class: wave.MethodHttp, Op: "GET"}).
			Build()
		require.NoError(t, err)
		return w
	}

	handler := s.fieldHandler()

	tr1 := &traversal.Transit{Wave: newPing(), Target: to, Injector: from, Current: starid.LayerField}
	outcome, err := handler.Handle(context.Background(), tr1)
	require.NoError(t, err)
	assert.Equal(t, traversal.OutcomeContinue, outcome.Kind)

	tr2 := &traversal.Transit{Wave: newPing(), Target: to, Injector: from, Current: starid.LayerField}
	_, err = handler.Handle(context.Background(), tr2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, starerr.ErrRateLimited))
}

// TestFieldHandlerSkipsAdmissionForReflections confirms a reflected
// (non-directed) wave still reaches the exchanger unconditionally —
// admission only gates new directed traffic entering a particle, never
// a reply already in flight for something this star sent out.
func TestFieldHandlerSkipsAdmissionForReflections(t *testing.T) {
	receiver := mustPoint(t, "my-space:receiver")
	kind := starid.NewKind(starid.KindMechtron)
	s, _, _ := buildStar(t, receiver, kind)
	s.admit = newAdmission(1, 0) // burst 0: every directed wave would be rejected

	to := starid.NewSurface(receiver, starid.LayerField, starid.NoTopic)
	pong := wave.Wave{Id: wave.NewId(), Kind: wave.KindPong, From: to, To: wave.Single(to), Status: 200}

	tr := &traversal.Transit{Wave: pong, Target: to, Injector: to, Current: starid.LayerField}
	outcome, err := s.fieldHandler().Handle(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, traversal.OutcomeAbsorb, outcome.Kind)
}
