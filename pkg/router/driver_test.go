package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

func mustPoint(t *testing.T, s string) starid.Point {
	t.Helper()
	p, err := starid.ParsePoint(s)
	require.NoError(t, err)
	return p
}

type stubHandler struct{ tag string }

func (s stubHandler) HandleCore(ctx context.Context, w wave.Wave) (wave.CoreBounce, error) {
	return wave.Absorbed(), nil
}

type stubDriver struct {
	kind      starid.KindSelector
	particles map[string]ParticleHandler
	fallback  ParticleHandler
	assigned  []starid.Point
	inited    bool
}

func (d *stubDriver) Init(ctx context.Context) error { d.inited = true; return nil }
func (d *stubDriver) Kind() starid.KindSelector       { return d.kind }
func (d *stubDriver) Assign(ctx context.Context, point starid.Point) error {
	d.assigned = append(d.assigned, point)
	return nil
}
func (d *stubDriver) Particle(point starid.Point) (ParticleHandler, bool) {
	h, ok := d.particles[point.String()]
	return h, ok
}
func (d *stubDriver) Handler() ParticleHandler { return d.fallback }

type stubKindLookup struct {
	kinds map[string]starid.Kind
}

func (l stubKindLookup) KindOf(point starid.Point) (starid.Kind, bool) {
	k, ok := l.kinds[point.String()]
	return k, ok
}

func TestDriverRegistryDriverForPrefersPerParticleHandler(t *testing.T) {
	point := mustPoint(t, "my-space:my-mechtron")
	lookup := stubKindLookup{kinds: map[string]starid.Kind{
		point.String(): starid.NewKind(starid.KindMechtron),
	}}
	registry := NewDriverRegistry(lookup)

	particleHandler := stubHandler{tag: "particle"}
	fallback := stubHandler{tag: "fallback"}
	driver := &stubDriver{
		kind:      starid.SelectBase(starid.KindMechtron),
		particles: map[string]ParticleHandler{point.String(): particleHandler},
		fallback:  fallback,
	}
	require.NoError(t, registry.Register(context.Background(), driver))
	assert.True(t, driver.inited)

	handler, ok := registry.DriverFor(point)
	require.True(t, ok)
	assert.Equal(t, particleHandler, handler)
}

func TestDriverRegistryDriverForFallsBackToHandler(t *testing.T) {
	point := mustPoint(t, "my-space:unassigned-mechtron")
	lookup := stubKindLookup{kinds: map[string]starid.Kind{
		point.String(): starid.NewKind(starid.KindMechtron),
	}}
	registry := NewDriverRegistry(lookup)

	fallback := stubHandler{tag: "fallback"}
	driver := &stubDriver{
		kind:     starid.SelectBase(starid.KindMechtron),
		fallback: fallback,
	}
	require.NoError(t, registry.Register(context.Background(), driver))

	handler, ok := registry.DriverFor(point)
	require.True(t, ok)
	assert.Equal(t, fallback, handler)
}

func TestDriverRegistryDriverForMissesUnknownKind(t *testing.T) {
	point := mustPoint(t, "my-space:a-file")
	lookup := stubKindLookup{kinds: map[string]starid.Kind{
		point.String(): starid.NewKind(starid.KindFile),
	}}
	registry := NewDriverRegistry(lookup)

	driver := &stubDriver{kind: starid.SelectBase(starid.KindMechtron), fallback: stubHandler{}}
	require.NoError(t, registry.Register(context.Background(), driver))

	_, ok := registry.DriverFor(point)
	assert.False(t, ok)
}

func TestDriverRegistryDriverForMissesUnresolvedPoint(t *testing.T) {
	point := mustPoint(t, "my-space:ghost")
	registry := NewDriverRegistry(stubKindLookup{kinds: map[string]starid.Kind{}})
	driver := &stubDriver{kind: starid.SelectBase(starid.KindMechtron), fallback: stubHandler{}}
	require.NoError(t, registry.Register(context.Background(), driver))

	_, ok := registry.DriverFor(point)
	assert.False(t, ok)
}

func TestDriverRegistryHostLocalCallsAssignOnce(t *testing.T) {
	point := mustPoint(t, "my-space:fresh-mechtron")
	lookup := stubKindLookup{kinds: map[string]starid.Kind{
		point.String(): starid.NewKind(starid.KindMechtron),
	}}
	registry := NewDriverRegistry(lookup)

	driver := &stubDriver{kind: starid.SelectBase(starid.KindMechtron), fallback: stubHandler{}}
	require.NoError(t, registry.Register(context.Background(), driver))

	require.NoError(t, registry.HostLocal(context.Background(), point))
	require.Len(t, driver.assigned, 1)
	assert.Equal(t, point, driver.assigned[0])
}

func TestDriverRegistryHostLocalMissesUnresolvedPoint(t *testing.T) {
	point := mustPoint(t, "my-space:ghost")
	registry := NewDriverRegistry(stubKindLookup{kinds: map[string]starid.Kind{}})
	driver := &stubDriver{kind: starid.SelectBase(starid.KindMechtron), fallback: stubHandler{}}
	require.NoError(t, registry.Register(context.Background(), driver))

	err := registry.HostLocal(context.Background(), point)
	assert.Error(t, err)
	assert.Empty(t, driver.assigned)
}
