package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/client"
	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/registry"
	"github.com/starlane-io/starlane/pkg/router"
	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/star"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

func mustPoint(t *testing.T, s string) starid.Point {
	t.Helper()
	p, err := starid.ParsePoint(s)
	require.NoError(t, err)
	return p
}

type echoDriver struct {
	sel starid.KindSelector
}

func (d *echoDriver) Init(ctx context.Context) error                       { return nil }
func (d *echoDriver) Kind() starid.KindSelector                            { return d.sel }
func (d *echoDriver) Assign(ctx context.Context, point starid.Point) error { return nil }
func (d *echoDriver) Particle(point starid.Point) (router.ParticleHandler, bool) {
	return nil, false
}
func (d *echoDriver) Handler() router.ParticleHandler { return d }

func (d *echoDriver) HandleCore(ctx context.Context, w wave.Wave) (wave.CoreBounce, error) {
	return wave.Reflected(wave.Ok(wave.TextSubstance("pong"))), nil
}

type noopTransport struct{}

func (noopTransport) Deliver(ctx context.Context, w wave.Wave) error { return nil }

type noopLanes struct{}

func (noopLanes) Neighbors() []search.LaneId                                       { return nil }
func (noopLanes) Broadcast(wind search.WindUp, exclude map[search.LaneId]struct{}) {}
func (noopLanes) Forward(lane search.LaneId, down search.WindDown)                 {}

// buildStar assembles a one-star mesh hosting a single receiver
// particle, mirroring pkg/star's own test harness, so Client can be
// exercised against a real traversal engine without any network.
func buildStar(t *testing.T, receiver starid.Point, kind starid.Kind) *star.Star {
	t.Helper()
	return buildStarWithTransport(t, receiver, kind, noopTransport{})
}

// buildStarWithTransport is buildStar generalized over the star's
// outbound transport, so the fabric-backed test can wire a real Mesh in
// place of the no-op used by the in-process tests — a reflection
// addressed back to an external client can only leave through a real
// transport, never a no-op.
func buildStarWithTransport(t *testing.T, receiver starid.Point, kind starid.Kind, transport router.Transport) *star.Star {
	t.Helper()
	local := registry.NewLocal()
	require.NoError(t, local.Assign(receiver, kind, "star-a"))
	gate := registry.HostGate{Registry: local, StarKey: "star-a"}

	drivers := router.NewDriverRegistry(gate)
	require.NoError(t, drivers.Register(context.Background(), &echoDriver{sel: starid.SelectBase(kind.Base())}))

	return star.New(star.Config{
		Key:       "star-a",
		Kind:      search.KindMesh,
		Registry:  gate,
		Drivers:   drivers,
		Lanes:     noopLanes{},
		Transport: transport,
		Exchange:  exchange.Timeouts{Fast: 50 * time.Millisecond, Med: 50 * time.Millisecond, Slow: 50 * time.Millisecond},
	})
}

func TestClientPingInProcessRoundTripsThroughGravity(t *testing.T) {
	receiver := mustPoint(t, "my-space:receiver")
	kind := starid.NewKind(starid.KindMechtron)
	s := buildStar(t, receiver, kind)

	clientPoint := mustPoint(t, "client:test-one")
	from := starid.NewSurface(clientPoint, starid.LayerCore, starid.NoTopic)
	to := starid.NewSurface(receiver, starid.LayerCore, starid.NoTopic)

	c := client.NewClient(s.Gravity, from)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := c.Ping(ctx, to, wave.Method{Class: wave.MethodHttp, Op: "GET"}, wave.Empty())
	require.NoError(t, err)
	assert.Equal(t, wave.KindPong, reply.Kind)
	assert.Equal(t, 200, reply.Status)
}

func TestClientSignalInProcessNeverBlocksOnReflection(t *testing.T) {
	receiver := mustPoint(t, "my-space:receiver")
	kind := starid.NewKind(starid.KindMechtron)
	s := buildStar(t, receiver, kind)

	clientPoint := mustPoint(t, "client:test-two")
	from := starid.NewSurface(clientPoint, starid.LayerCore, starid.NoTopic)
	to := starid.NewSurface(receiver, starid.LayerCore, starid.NoTopic)

	c := client.NewClient(s.Gravity, from)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.Signal(ctx, to, wave.Method{Class: wave.MethodHyp, Op: "Greet"}, wave.Empty())
	require.NoError(t, err)
}
