package star

import (
	"context"

	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// task is one unit of work for the star loop: a wave entering the
// traversal engine at injector.
type task struct {
	ctx      context.Context
	w        wave.Wave
	injector starid.Surface
}

// queues holds the three FIFO lanes §5 describes — inbound fabric,
// injected (from local drivers/clients), and traversal continuations
// (reflections re-entering the engine) — plus the stop signal for Run.
// Each is buffered (queueDepth) so a producer's send returns at once
// while there is room; a send to a full queue blocks until Run drains
// it. The fabric receive loop (pkg/fabric) feeds fabricIn; GravityRouter
// and Engine.reinject call the engine directly and do not use these
// queues.
type queues struct {
	fabricIn      chan task
	injected      chan task
	continuations chan task
	stop          chan struct{}
}

const queueDepth = 256

func newQueues() *queues {
	return &queues{
		fabricIn:      make(chan task, queueDepth),
		injected:      make(chan task, queueDepth),
		continuations: make(chan task, queueDepth),
		stop:          make(chan struct{}),
	}
}

// EnqueueFabric submits a wave that arrived over the network transport.
func (s *Star) EnqueueFabric(ctx context.Context, w wave.Wave, injector starid.Surface) {
	s.queues.fabricIn <- task{ctx: ctx, w: w, injector: injector}
}

// EnqueueInjected submits a wave originated locally. GravityRouter does
// not call it; it injects into the engine directly.
func (s *Star) EnqueueInjected(ctx context.Context, w wave.Wave, injector starid.Surface) {
	s.queues.injected <- task{ctx: ctx, w: w, injector: injector}
}

// EnqueueContinuation submits a reflection re-entering the engine.
// Engine.reinject does not call it; it re-enters Inject directly.
func (s *Star) EnqueueContinuation(ctx context.Context, w wave.Wave, injector starid.Surface) {
	s.queues.continuations <- task{ctx: ctx, w: w, injector: injector}
}

// Run drains the three queues on a single goroutine — the "one logical
// event loop" of §5 — servicing them round-robin, FIFO within each.
// Run blocks until ctx is cancelled or Stop is called.
func (s *Star) Run(ctx context.Context) {
	lanes := [3]chan task{s.queues.fabricIn, s.queues.injected, s.queues.continuations}

	for {
		if done := s.drainOneRound(ctx, lanes); done {
			return
		}
	}
}

// drainOneRound services at most one ready task from each lane in turn,
// then blocks on whichever lane produces next if all three were empty.
// Returns true once ctx or Stop fires.
func (s *Star) drainOneRound(ctx context.Context, lanes [3]chan task) bool {
	serviced := false
	for _, lane := range lanes {
		select {
		case t := <-lane:
			s.handle(t)
			serviced = true
		default:
		}
	}
	if serviced {
		return false
	}

	select {
	case t := <-lanes[0]:
		s.handle(t)
	case t := <-lanes[1]:
		s.handle(t)
	case t := <-lanes[2]:
		s.handle(t)
	case <-s.queues.stop:
		return true
	case <-ctx.Done():
		return true
	}
	return false
}

func (s *Star) handle(t task) {
	if err := s.Engine.Inject(t.ctx, t.w, t.injector); err != nil {
		s.log.Warn().Err(err).Str("wave_id", t.w.Id.String()).Msg("traversal injection failed")
	}
}

// Stop signals Run to return once it next checks for a stop signal.
func (s *Star) Stop() {
	close(s.queues.stop)
}
