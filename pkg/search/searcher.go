package search

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/starlane-io/starlane/pkg/starerr"
)

// Searcher runs the flood wind-up/wind-down protocol for one star. One
// instance is owned per star, the same way pkg/exchange.Exchanger owns
// one WaveId-keyed map per star.
type Searcher struct {
	self     StarKey
	selfKind StarKind
	lanes    LaneRouter
	timeout  time.Duration

	sequence uint64

	mu           sync.Mutex
	transactions map[TransactionId]*transaction
}

// NewSearcher builds a Searcher for a star identified by self/selfKind,
// flooding over lanes and completing any transaction that runs longer
// than timeout with a partial result.
func NewSearcher(self StarKey, selfKind StarKind, lanes LaneRouter, timeout time.Duration) *Searcher {
	return &Searcher{
		self:         self,
		selfKind:     selfKind,
		lanes:        lanes,
		timeout:      timeout,
		transactions: make(map[TransactionId]*transaction),
	}
}

// Search floods pattern outward and blocks until every reachable
// neighbour has reported back, ctx is cancelled, or the search timeout
// expires.
func (s *Searcher) Search(ctx context.Context, pattern Pattern) (Hits, error) {
	reply := make(chan Hits, 1)
	tid, finished := s.launchWindUpHop(WindUp{From: s.self, Pattern: pattern, MaxHops: MaxHops, Action: ActionSearchHits}, reply, nil)
	if finished == nil {
		return <-reply, nil
	}

	go func() {
		select {
		case <-ctx.Done():
			s.cancel(tid)
		case <-finished:
		}
	}()

	select {
	case hits, ok := <-reply:
		if !ok {
			return Hits{}, starerr.Timeout("search cancelled before completion")
		}
		return hits, nil
	case <-ctx.Done():
		return Hits{}, ctx.Err()
	}
}

// launchWindUpHop registers a new transaction and broadcasts wind to
// every neighbour outside exclude, mirroring the original's
// launch_windup_hop. Returns the transaction id and its finished
// channel — finished is nil if the transaction was already satisfied
// (no neighbours to await) by the time this call returns, since in that
// case reply has already been written to.
func (s *Searcher) launchWindUpHop(wind WindUp, reply chan Hits, exclude map[LaneId]struct{}) (TransactionId, <-chan struct{}) {
	tid := TransactionId(atomic.AddUint64(&s.sequence, 1))

	var localHit *StarKey
	if wind.Pattern.Matches(s.self, s.selfKind) {
		key := s.self
		localHit = &key
	}

	neighbors := s.lanes.Neighbors()
	awaited := make(map[LaneId]struct{}, len(neighbors))
	for _, n := range neighbors {
		if _, excluded := exclude[n]; !excluded {
			awaited[n] = struct{}{}
		}
	}

	txn := newTransaction(wind.Pattern, awaited, localHit, reply)

	s.mu.Lock()
	s.transactions[tid] = txn
	txn.timer = time.AfterFunc(s.timeout, func() { s.expire(tid) })
	satisfied := txn.isSatisfied()
	if satisfied {
		delete(s.transactions, tid)
	}
	s.mu.Unlock()

	if satisfied {
		txn.finish()
		return tid, nil
	}

	wind = wind.withHop(s.self, tid)
	s.lanes.Broadcast(wind, exclude)
	return tid, txn.finished
}

// OnWindUp handles a WindUp arriving on fromLane, the logic the
// original calls land_windup_hop.
func (s *Searcher) OnWindUp(wind WindUp, fromLane LaneId) {
	if wind.Pattern.IsSingleMatch() && wind.Pattern.Matches(s.self, s.selfKind) {
		hit := Hit{Star: s.self, Hops: len(wind.Hops) + 1}
		s.lanes.Forward(fromLane, WindDown{Hops: wind.Hops, Transactions: wind.Transactions, Hits: []Hit{hit}, WindUp: wind})
		return
	}

	localMatch := wind.Pattern.Matches(s.self, s.selfKind)
	neighbors := s.lanes.Neighbors()

	if len(wind.Hops)+1 >= min(wind.MaxHops, MaxHops) || len(neighbors) <= 1 || !s.selfKind.Relay() {
		var hits []Hit
		if localMatch {
			hits = []Hit{{Star: s.self, Hops: len(wind.Hops) + 1}}
		}
		s.lanes.Forward(fromLane, WindDown{Hops: wind.Hops, Transactions: wind.Transactions, Hits: hits, WindUp: wind})
		return
	}

	exclude := map[LaneId]struct{}{fromLane: {}}
	reply := make(chan Hits, 1)
	s.launchWindUpHop(wind, reply, exclude)

	go func() {
		nested := <-reply
		hits := make([]Hit, 0, len(nested.Hits))
		for star, hops := range nested.Hits {
			hits = append(hits, Hit{Star: star, Hops: hops + 1})
		}
		s.lanes.Forward(fromLane, WindDown{Hops: wind.Hops, Transactions: wind.Transactions, Hits: hits, WindUp: wind})
	}()
}

// OnWindDown handles a WindDown arriving on fromLane, the logic the
// original calls process_search_transaction.
func (s *Searcher) OnWindDown(down WindDown, fromLane LaneId) {
	if len(down.Transactions) == 0 {
		log.Warn().Str("lane", fromLane).Msg("search wind-down with no transaction id")
		return
	}
	tid := down.Transactions[len(down.Transactions)-1]

	s.mu.Lock()
	txn, ok := s.transactions[tid]
	if !ok {
		s.mu.Unlock()
		log.Warn().Uint64("transaction", uint64(tid)).Msg("search wind-down for unknown transaction")
		return
	}
	complete := txn.onFrame(fromLane, down.Hits)
	if complete {
		delete(s.transactions, tid)
	}
	s.mu.Unlock()

	if complete {
		txn.finish()
	}
}

// OnLaneClosed removes lane from every pending transaction's awaited
// set, completing any transaction that was only waiting on it.
func (s *Searcher) OnLaneClosed(lane LaneId) {
	s.mu.Lock()
	var completed []*transaction
	for tid, txn := range s.transactions {
		if txn.onLaneClosed(lane) {
			completed = append(completed, txn)
			delete(s.transactions, tid)
		}
	}
	s.mu.Unlock()

	for _, txn := range completed {
		txn.finish()
	}
}

// expire fires when a transaction's timer elapses; it completes with
// whatever hits were collected so far and logs that the result is
// partial.
func (s *Searcher) expire(tid TransactionId) {
	s.mu.Lock()
	txn, ok := s.transactions[tid]
	if !ok || txn.done {
		s.mu.Unlock()
		return
	}
	delete(s.transactions, tid)
	s.mu.Unlock()

	log.Warn().Uint64("transaction", uint64(tid)).Str("pattern", txn.pattern.String()).
		Int("reported", len(txn.reported)).Int("awaited", len(txn.awaited)).
		Msg("search transaction timed out, completing with partial result")
	txn.finish()
}

// cancel removes a pending transaction without completing it, used when
// a Search caller's context is cancelled before a WindDown or timeout
// arrives.
func (s *Searcher) cancel(tid TransactionId) {
	s.mu.Lock()
	txn, ok := s.transactions[tid]
	if !ok || txn.done {
		s.mu.Unlock()
		return
	}
	delete(s.transactions, tid)
	if txn.timer != nil {
		txn.timer.Stop()
	}
	txn.done = true
	s.mu.Unlock()
	close(txn.reply)
}
