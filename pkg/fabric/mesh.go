package fabric

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/starlane-io/starlane/pkg/log"
	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Inbound is the narrow slice of pkg/star.Star the fabric needs to hand
// an arrived wave to — kept as an interface the same way pkg/router
// keeps Engine/Transport narrow, so this package never imports pkg/star
// and no import cycle is possible.
type Inbound interface {
	EnqueueFabric(ctx context.Context, w wave.Wave, injector starid.Surface)
}

// Config wires a Mesh to its star and certificate material. Searcher is
// bound after construction via BindSearcher, since search.NewSearcher
// itself needs the Mesh as its LaneRouter — the two are mutually
// dependent and neither can be built fully formed before the other.
type Config struct {
	Self    search.StarKey
	CertDir string
	Inbound Inbound
}

// Mesh is one star's view of the fabric: a gRPC listener accepting
// inbound lanes, a table of outbound lanes this star has dialed, and
// the mTLS material both directions share. It implements
// pkg/router.Transport (outbound wave delivery) and
// pkg/search.LaneRouter (neighbour flood/reply) — the two narrow
// capabilities the rest of the mesh runtime needs from it.
type Mesh struct {
	self     search.StarKey
	certDir  string
	inbound  Inbound
	searcher *search.Searcher
	log      zerolog.Logger

	mu    sync.Mutex
	lanes map[search.StarKey]*lane
	// waits holds one ephemeral entry per in-flight wave sent in by a
	// non-star client lane (pkg/client), keyed by that wave's Id so the
	// reflection it produces — whose ReflectionOf carries the same Id —
	// can be routed back down the exact stream it arrived on instead of
	// through the star-route/broadcast logic Deliver otherwise uses.
	waits map[wave.Id]*lane

	server   *grpc.Server
	listener net.Listener
}

func New(cfg Config) *Mesh {
	return &Mesh{
		self:    cfg.Self,
		certDir: cfg.CertDir,
		inbound: cfg.Inbound,
		log:     log.WithComponent("fabric").With().Str("star_key", string(cfg.Self)).Logger(),
		lanes:   make(map[search.StarKey]*lane),
		waits:   make(map[wave.Id]*lane),
	}
}

// BindSearcher attaches the search protocol engine this mesh forwards
// wind-up/wind-down gossip to. Must be called once, before Listen or
// Dial, with the Searcher constructed using this same Mesh as its
// LaneRouter.
func (m *Mesh) BindSearcher(s *search.Searcher) {
	m.searcher = s
}

// arrivalInjector is the injector surface every wave arriving from the
// fabric enters traversal at: a star-identity surface at Field, so a
// freshly-arrived wave walks the full particle stack — Field's
// admission handling included — rather than jumping straight to Core
// the way a locally-originated (Gravity) wave does.
func (m *Mesh) arrivalInjector() starid.Surface {
	return starid.NewSurface(starid.RootPoint(starid.StarRoute(string(m.self))), starid.LayerField, starid.NoTopic)
}

// Bind opens the listening socket and registers the Lane service, but
// does not start accepting connections — Serve does that. Split from
// Serve (unlike the teacher's combined Server.Start) so a caller such
// as a test can read Addr() before the accept loop blocks it.
func (m *Mesh) Bind(addr string) error {
	tlsConf, err := serverTLSConfig(m.certDir)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("fabric: listen on %s: %w", addr, err)
	}
	m.listener = lis

	server := grpc.NewServer(grpc.Creds(credentials.NewTLS(tlsConf)))
	server.RegisterService(&serviceDesc, (LaneServer)(m))
	m.server = server
	return nil
}

// Addr returns the bound listener's address. Valid only after Bind.
func (m *Mesh) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Serve accepts inbound lanes until Close is called or the listener
// errors. Bind must be called first.
func (m *Mesh) Serve() error {
	m.log.Info().Str("addr", m.listener.Addr().String()).Msg("fabric listening")
	return m.server.Serve(m.listener)
}

// Listen is the combined Bind+Serve convenience a star's startup path
// uses, mirroring the teacher's Server.Start(addr).
func (m *Mesh) Listen(addr string) error {
	if err := m.Bind(addr); err != nil {
		return err
	}
	return m.Serve()
}

// Close stops accepting new lanes and tears down every existing one.
func (m *Mesh) Close() {
	if m.server != nil {
		m.server.GracefulStop()
	}
	m.mu.Lock()
	lanes := make([]*lane, 0, len(m.lanes))
	for _, l := range m.lanes {
		lanes = append(lanes, l)
	}
	m.lanes = make(map[search.StarKey]*lane)
	m.mu.Unlock()
	for _, l := range lanes {
		_ = l.close()
	}
}

// Stream implements LaneServer: accept one inbound connection and
// identify its peer from its mTLS client certificate. A "star-"
// certificate is a neighbour star and gets a standing lane in m.lanes,
// contributing to search and broadcast. Any other certificate is
// treated as a one-off client connection (pkg/client) — see
// handleClientStream.
func (m *Mesh) Stream(stream LaneStreamServer) error {
	ctx := stream.Context()
	peerKey, err := peerStarKey(ctx)
	if err != nil {
		return m.handleClientStream(ctx, stream)
	}

	l := &lane{
		key:     peerKey,
		sendFn:  stream.Send,
		closeFn: func() error { return nil },
	}
	m.addLane(l)
	m.recvLoop(ctx, l, stream.Recv)
	return nil
}

// handleClientStream services a lane opened by something other than a
// neighbouring star — a diagnostic client sending one or more waves and
// waiting for whatever reflects back. Each inbound wave is registered
// in m.waits under its own Id and injected into local traversal at
// Field, same as a fabric arrival from a star; Deliver consults m.waits
// before falling back to star-route/broadcast routing, so every
// reflection produced locally for this wave — one for a Ping, possibly
// several for a Ripple — comes straight back down this stream. Entries
// are only cleaned up when the stream itself ends, not per-reflection,
// since a Ripple's bounce-backs policy may expect more than one; a
// long-lived client connection sending many distinct waves will grow
// this table for the life of the connection, which is fine for the
// short diagnostic sessions pkg/client is built for.
func (m *Mesh) handleClientStream(ctx context.Context, stream LaneStreamServer) error {
	l := &lane{sendFn: stream.Send, closeFn: func() error { return nil }}
	var mine []wave.Id
	defer func() {
		m.mu.Lock()
		for _, id := range mine {
			if m.waits[id] == l {
				delete(m.waits, id)
			}
		}
		m.mu.Unlock()
	}()

	for {
		raw, err := stream.Recv()
		if err != nil {
			return nil
		}
		frame, err := decodeFrame(raw)
		if err != nil {
			m.log.Warn().Err(err).Msg("fabric client stream dropped malformed frame")
			continue
		}
		if frame.Kind != envelopeWave {
			m.log.Warn().Msg("fabric client stream sent a non-wave frame")
			continue
		}

		m.mu.Lock()
		m.waits[frame.Wave.Id] = l
		m.mu.Unlock()
		mine = append(mine, frame.Wave.Id)

		m.inbound.EnqueueFabric(ctx, frame.Wave, m.arrivalInjector())
	}
}

// Dial opens an outbound lane to a neighbour star at addr, replacing
// any existing lane already registered under that key.
func (m *Mesh) Dial(ctx context.Context, peerKey search.StarKey, addr string) error {
	tlsConf, err := clientTLSConfig(m.certDir)
	if err != nil {
		return err
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(credentials.NewTLS(tlsConf)))
	if err != nil {
		return fmt.Errorf("fabric: dial %s: %w", addr, err)
	}

	stream, err := dialStream(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("fabric: open lane stream to %s: %w", addr, err)
	}

	l := &lane{
		key:     peerKey,
		sendFn:  stream.Send,
		closeFn: conn.Close,
	}
	m.addLane(l)
	go m.recvLoop(ctx, l, stream.Recv)
	return nil
}

func (m *Mesh) addLane(l *lane) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lanes[l.key] = l
}

func (m *Mesh) dropLane(key search.StarKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lanes, key)
}

func (m *Mesh) lane(key search.StarKey) (*lane, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lanes[key]
	return l, ok
}

// Deliver implements pkg/router.Transport: a wave the traversal engine
// resolved outward leaves through the lane for its target's star
// route, if it has one, or is flooded to every known lane otherwise —
// this mesh has no distributed routing table yet (see DESIGN.md), so a
// point with no explicit star route falls back to the same
// every-neighbour broadcast the search protocol already uses.
func (m *Mesh) Deliver(ctx context.Context, w wave.Wave) error {
	frame, err := encodeWave(w)
	if err != nil {
		return err
	}

	if !w.IsDirected() {
		m.mu.Lock()
		l, ok := m.waits[w.ReflectionOf]
		m.mu.Unlock()
		if ok {
			return l.send(frame)
		}
	}

	to, ok := w.To.One()
	if ok && to.Point.Route().Kind == starid.RouteStar {
		key := search.StarKey(to.Point.Route().Star)
		l, ok := m.lane(key)
		if !ok {
			return starerr.NotFound("fabric: no lane to star " + string(key))
		}
		return l.send(frame)
	}

	m.mu.Lock()
	lanes := make([]*lane, 0, len(m.lanes))
	for _, l := range m.lanes {
		lanes = append(lanes, l)
	}
	m.mu.Unlock()

	if len(lanes) == 0 {
		return starerr.NotFound("fabric: no lanes available to deliver wave")
	}
	var firstErr error
	for _, l := range lanes {
		if err := l.send(frame); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Neighbors implements pkg/search.LaneRouter.
func (m *Mesh) Neighbors() []search.LaneId {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]search.LaneId, 0, len(m.lanes))
	for key := range m.lanes {
		ids = append(ids, search.LaneId(key))
	}
	return ids
}

// Broadcast implements pkg/search.LaneRouter: flood wind to every
// neighbour not in exclude.
func (m *Mesh) Broadcast(wind search.WindUp, exclude map[search.LaneId]struct{}) {
	frame, err := encodeWindUp(wind)
	if err != nil {
		m.log.Warn().Err(err).Msg("fabric: failed to encode wind-up broadcast")
		return
	}
	m.mu.Lock()
	lanes := make([]*lane, 0, len(m.lanes))
	for key, l := range m.lanes {
		if _, skip := exclude[search.LaneId(key)]; skip {
			continue
		}
		lanes = append(lanes, l)
	}
	m.mu.Unlock()
	for _, l := range lanes {
		if err := l.send(frame); err != nil {
			m.log.Warn().Err(err).Str("lane", string(l.key)).Msg("fabric: wind-up broadcast failed on lane")
		}
	}
}

// Forward implements pkg/search.LaneRouter: send down back along a
// single named lane.
func (m *Mesh) Forward(id search.LaneId, down search.WindDown) {
	l, ok := m.lane(search.StarKey(id))
	if !ok {
		m.log.Warn().Str("lane", string(id)).Msg("fabric: wind-down forward target lane is gone")
		return
	}
	frame, err := encodeWindDown(down)
	if err != nil {
		m.log.Warn().Err(err).Msg("fabric: failed to encode wind-down forward")
		return
	}
	if err := l.send(frame); err != nil {
		m.log.Warn().Err(err).Str("lane", string(id)).Msg("fabric: wind-down forward failed")
	}
}
