package star

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/registry"
	"github.com/starlane-io/starlane/pkg/router"
	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
	"github.com/starlane-io/starlane/pkg/wrangler"
)

func mustPoint(t *testing.T, s string) starid.Point {
	t.Helper()
	p, err := starid.ParsePoint(s)
	require.NoError(t, err)
	return p
}

func fastTimeouts() exchange.Timeouts {
	return exchange.Timeouts{Fast: 50 * time.Millisecond, Med: 50 * time.Millisecond, Slow: 50 * time.Millisecond}
}

// countingDriver records every wave it's asked to handle, then echoes a
// Pong reflection, standing in for a real particle driver.
type countingDriver struct {
	sel starid.KindSelector

	mu      sync.Mutex
	handled []wave.Wave
}

func (d *countingDriver) Init(ctx context.Context) error                      { return nil }
func (d *countingDriver) Kind() starid.KindSelector                           { return d.sel }
func (d *countingDriver) Assign(ctx context.Context, point starid.Point) error { return nil }
func (d *countingDriver) Particle(point starid.Point) (router.ParticleHandler, bool) {
	return nil, false
}
func (d *countingDriver) Handler() router.ParticleHandler { return d }

func (d *countingDriver) HandleCore(ctx context.Context, w wave.Wave) (wave.CoreBounce, error) {
	d.mu.Lock()
	d.handled = append(d.handled, w)
	d.mu.Unlock()
	return wave.Reflected(wave.Ok(wave.TextSubstance("pong"))), nil
}

func (d *countingDriver) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handled)
}

type noopTransport struct {
	mu   sync.Mutex
	sent []wave.Wave
}

func (tr *noopTransport) Deliver(ctx context.Context, w wave.Wave) error {
	tr.mu.Lock()
	tr.sent = append(tr.sent, w)
	tr.mu.Unlock()
	return nil
}

type noopLanes struct{}

func (noopLanes) Neighbors() []search.LaneId                                       { return nil }
func (noopLanes) Broadcast(wind search.WindUp, exclude map[search.LaneId]struct{}) {}
func (noopLanes) Forward(lane search.LaneId, down search.WindDown)                 {}

func buildStar(t *testing.T, receiver starid.Point, kind starid.Kind) (*Star, *countingDriver, *noopTransport) {
	t.Helper()
	local := registry.NewLocal()
	require.NoError(t, local.Assign(receiver, kind, "star-a"))
	gate := registry.HostGate{Registry: local, StarKey: "star-a"}

	driver := &countingDriver{sel: starid.SelectBase(kind.Base())}
	drivers := router.NewDriverRegistry(gate)
	require.NoError(t, drivers.Register(context.Background(), driver))

	transport := &noopTransport{}
	s := New(Config{
		Key:       "star-a",
		Kind:      search.KindMesh,
		Registry:  gate,
		Drivers:   drivers,
		Lanes:     noopLanes{},
		Transport: transport,
		Exchange:  fastTimeouts(),
	})
	return s, driver, transport
}

func TestStarGravityExchangeRoundTripsThroughFieldHandler(t *testing.T) {
	receiver := mustPoint(t, "my-space:receiver")
	sender := mustPoint(t, "my-space:sender")
	kind := starid.NewKind(starid.KindMechtron)

	s, _, _ := buildStar(t, receiver, kind)

	from := starid.NewSurface(sender, starid.LayerShell, starid.NoTopic)
	to := starid.NewSurface(receiver, starid.LayerCore, starid.NoTopic)

	w, err := wave.NewDirectedProto(wave.KindPing).
		From(from).To(wave.Single(to)).
		Method(wave.Method{Class: wave.MethodHttp, Op: "GET"}).
		Build()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	agg, err := s.Gravity.Exchange(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, exchange.AggregateOne, agg.Kind)

	reply, ok := agg.First()
	require.True(t, ok)
	assert.Equal(t, wave.KindPong, reply.Kind)
	assert.Equal(t, 200, reply.Status)
}

func TestStarRunDrainsInjectedQueueAcrossAllThreeLanes(t *testing.T) {
	receiver := mustPoint(t, "my-space:receiver")
	sender := mustPoint(t, "my-space:sender")
	kind := starid.NewKind(starid.KindMechtron)

	s, driver, _ := buildStar(t, receiver, kind)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	defer s.Stop()

	from := starid.NewSurface(sender, starid.LayerShell, starid.NoTopic)
	to := starid.NewSurface(receiver, starid.LayerCore, starid.NoTopic)
	injector := starid.NewSurface(starid.RootPoint(starid.StarRoute("star-a")), starid.LayerCore, starid.NoTopic)

	makeSignal := func() wave.Wave {
		w, err := wave.NewDirectedProto(wave.KindSignal).
			From(from).To(wave.Single(to)).
			Method(wave.Method{Class: wave.MethodHyp, Op: "Greet"}).
			Build()
		require.NoError(t, err)
		return w
	}

	s.EnqueueFabric(ctx, makeSignal(), injector)
	s.EnqueueInjected(ctx, makeSignal(), injector)
	s.EnqueueContinuation(ctx, makeSignal(), injector)

	require.Eventually(t, func() bool { return driver.count() == 3 }, time.Second, 10*time.Millisecond)
}

func TestStarDiscoverPopulatesWranglerTable(t *testing.T) {
	receiver := mustPoint(t, "my-space:receiver")
	kind := starid.NewKind(starid.KindMechtron)
	s, _, _ := buildStar(t, receiver, kind)

	// A lone star with no neighbors only ever discovers itself.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	hits, err := s.Discover(ctx, search.KindMesh)
	require.NoError(t, err)
	assert.Contains(t, hits.Hits, search.StarKey("star-a"))

	rows := s.Wrangle.Select(wrangler.ForKind(search.KindMesh))
	require.Len(t, rows, 1)
	assert.Equal(t, search.StarKey("star-a"), rows[0].Key)
}
