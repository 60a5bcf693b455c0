package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/wave"
)

// entry is the bookkeeping the exchanger keeps for one outstanding
// directed wave. Access is always through the owning Exchanger's mutex.
type entry struct {
	waveId   wave.Id
	policy   wave.BounceBacks
	intended wave.Recipients
	from     wave.Wave // the original directed wave, for synthesizing timeouts

	collected []wave.Wave
	result    chan ReflectedAggregate
	finished  chan struct{} // closed exactly once, when finish() runs
	timer     *time.Timer
	done      bool
}

// Exchanger maps WaveId to pending entries and resolves them against
// arriving reflections. One Exchanger instance is owned per star.
type Exchanger struct {
	mu       sync.Mutex
	pending  map[wave.Id]*entry
	timeouts Timeouts
}

func NewExchanger(timeouts Timeouts) *Exchanger {
	return &Exchanger{pending: make(map[wave.Id]*entry), timeouts: timeouts}
}

// Exchange registers w (which must be directed) and returns a channel
// that yields exactly one ReflectedAggregate once the bounce-backs
// policy is satisfied or the wait-class timer expires. Cancelling ctx
// removes the entry and closes the channel without a send, mirroring
// "dropping the receiver" in the original design.
func (x *Exchanger) Exchange(ctx context.Context, w wave.Wave) (<-chan ReflectedAggregate, error) {
	if !w.IsDirected() {
		return nil, starerr.Protocol("exchange called on a non-directed wave")
	}

	if w.Bounce.Kind == wave.BounceNone {
		ch := make(chan ReflectedAggregate, 1)
		ch <- NoneAggregate()
		close(ch)
		return ch, nil
	}

	e := &entry{
		waveId:   w.Id,
		policy:   w.Bounce,
		from:     w,
		result:   make(chan ReflectedAggregate, 1),
		finished: make(chan struct{}),
	}
	if w.Reflection != nil {
		e.intended = w.Reflection.Intended
	}

	wait := x.timeouts.Resolve(w.Handle.Wait)

	x.mu.Lock()
	x.pending[w.Id] = e
	e.timer = time.AfterFunc(wait, func() { x.timeout(w.Id) })
	x.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			x.cancel(w.Id)
		case <-e.finished:
		}
	}()

	return e.result, nil
}

// Reflected delivers a reflection into the exchanger. If no entry exists
// for its ReflectionOf id, the reflection is an orphan: a protocol
// violation that gets logged rather than propagated, per spec §4.3.
func (x *Exchanger) Reflected(w wave.Wave) {
	if w.IsDirected() {
		return
	}

	x.mu.Lock()
	e, ok := x.pending[w.ReflectionOf]
	if !ok {
		x.mu.Unlock()
		log.Warn().
			Str("wave_id", w.Id.String()).
			Str("reflection_of", w.ReflectionOf.String()).
			Str("from", w.From.String()).
			Str("to", w.To.String()).
			Str("kind", w.Kind.String()).
			Int("status", w.Status).
			Msg("orphan reflection: no matching exchange entry")
		return
	}

	complete, aggregate := e.accept(w)
	if complete {
		delete(x.pending, w.ReflectionOf)
	}
	x.mu.Unlock()

	if complete {
		e.finish(aggregate)
	}
}

// accept appends w under the entry's policy and reports whether the
// policy is now satisfied. Must be called with the exchanger's mutex
// held, since it reads/writes entry state shared with timeout/cancel.
func (e *entry) accept(w wave.Wave) (bool, ReflectedAggregate) {
	if e.done {
		return false, ReflectedAggregate{}
	}
	e.collected = append(e.collected, w)

	switch e.policy.Kind {
	case wave.BounceSingle:
		return true, OneAggregate(w)
	case wave.BounceCount:
		if len(e.collected) >= e.policy.Count {
			return true, ManyAggregate(append([]wave.Wave(nil), e.collected...))
		}
		return false, ReflectedAggregate{}
	case wave.BounceTimer:
		return false, ReflectedAggregate{} // only the timer completes this policy
	default:
		return true, OneAggregate(w)
	}
}

func (e *entry) finish(agg ReflectedAggregate) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.done = true
	e.result <- agg
	close(e.result)
	close(e.finished)
}

// timeout fires when an entry's wait-class timer expires. Single
// policies synthesize a 408 reflection to the intended surface; Count
// and Timer policies complete with whatever was collected so far.
func (x *Exchanger) timeout(id wave.Id) {
	x.mu.Lock()
	e, ok := x.pending[id]
	if !ok || e.done {
		x.mu.Unlock()
		return
	}
	delete(x.pending, id)
	x.mu.Unlock()

	var agg ReflectedAggregate
	switch e.policy.Kind {
	case wave.BounceSingle:
		if len(e.collected) > 0 {
			agg = OneAggregate(e.collected[0])
		} else {
			agg = OneAggregate(synthesizeTimeout(e))
		}
	default:
		agg = ManyAggregate(append([]wave.Wave(nil), e.collected...))
	}
	e.finish(agg)
}

func synthesizeTimeout(e *entry) wave.Wave {
	reflectKind := wave.KindPong
	if e.from.Kind == wave.KindRipple {
		reflectKind = wave.KindEcho
	}
	core := wave.ErrCore(408, fmt.Sprintf("exchange timed out waiting on wave %s", e.waveId))
	var from, to = e.from.From, e.from.From
	if surf, ok := e.intended.One(); ok {
		to = surf
	}
	return wave.Wave{
		Id:           wave.NewId(),
		Kind:         reflectKind,
		From:         from,
		To:           wave.Single(to),
		Method:       wave.Method{Class: wave.MethodHttp, Op: "REFLECT"},
		Body:         core.Body,
		ReflectionOf: e.waveId,
		Status:       core.Status,
	}
}

// cancel removes a pending entry without completing it, used when the
// caller's context is cancelled before a reflection or timeout arrives.
func (x *Exchanger) cancel(id wave.Id) {
	x.mu.Lock()
	e, ok := x.pending[id]
	if !ok || e.done {
		x.mu.Unlock()
		return
	}
	delete(x.pending, id)
	if e.timer != nil {
		e.timer.Stop()
	}
	e.done = true
	x.mu.Unlock()
	close(e.result)
}
