package fabric

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/starlane-io/starlane/pkg/search"
)

// lane is one bidi stream to a neighbouring star, in either direction
// (dialed out by this star, or accepted from its listener). send is
// serialized with a mutex since a gRPC stream only tolerates one
// concurrent SendMsg at a time; Recv runs on whatever goroutine reads
// the stream (recvLoop below), which is exactly one per lane.
type lane struct {
	key     search.StarKey
	mu      sync.Mutex
	sendFn  func(*rawMessage) error
	closeFn func() error
}

func (l *lane) send(m *rawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sendFn(m)
}

func (l *lane) close() error {
	if l.closeFn == nil {
		return nil
	}
	return l.closeFn()
}

// recvLoop reads frames off recv until it errors (peer closed, ctx
// cancelled), dispatching each to mesh's handlers. It always removes
// the lane from mesh's table on exit, mirroring how the search
// package's Searcher.OnLaneClosed treats a dropped lane as "nothing
// more will arrive from here," not as a protocol error.
func (m *Mesh) recvLoop(ctx context.Context, l *lane, recv func() (*rawMessage, error)) {
	log := m.log.With().Str("lane", string(l.key)).Logger()
	defer m.dropLane(l.key)
	defer m.searcher.OnLaneClosed(search.LaneId(l.key))

	for {
		raw, err := recv()
		if err != nil {
			log.Debug().Err(err).Msg("fabric lane closed")
			return
		}
		frame, err := decodeFrame(raw)
		if err != nil {
			log.Warn().Err(err).Msg("fabric lane dropped malformed frame")
			continue
		}
		m.dispatch(ctx, l.key, frame, log)
	}
}

func (m *Mesh) dispatch(ctx context.Context, from search.StarKey, frame decoded, log zerolog.Logger) {
	switch frame.Kind {
	case envelopeWave:
		injector := m.arrivalInjector()
		m.inbound.EnqueueFabric(ctx, frame.Wave, injector)
	case envelopeWindUp:
		m.searcher.OnWindUp(frame.WindUp, search.LaneId(from))
	case envelopeWindDown:
		m.searcher.OnWindDown(frame.WindDown, search.LaneId(from))
	default:
		log.Warn().Msg("fabric lane dropped frame of unknown kind")
	}
}
