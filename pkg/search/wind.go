package search

import "time"

// MaxHops is the process-wide ceiling on search flood depth. It always
// wins over a caller-supplied WindUp.MaxHops, per spec: an absolute
// safety bound no search may exceed regardless of what it asks for.
const MaxHops = 32

// DefaultTimeout is how long a Searcher waits for a transaction to
// collect every awaited lane's WindDown before completing with a
// partial result.
const DefaultTimeout = 5 * time.Second

// TransactionId correlates a WindDown back to the transaction that
// launched the WindUp hop it answers.
type TransactionId uint64

// WindUp floods outward from its originator, one hop per relaying star.
// Hops and Transactions grow by exactly one entry per star visited, and
// are popped in LIFO order as the matching WindDown winds back.
type WindUp struct {
	From         StarKey
	Pattern      Pattern
	Hops         []StarKey
	Transactions []TransactionId
	MaxHops      int
	Action       Action
}

func (w WindUp) withHop(star StarKey, tid TransactionId) WindUp {
	w.Hops = append(append([]StarKey(nil), w.Hops...), star)
	w.Transactions = append(append([]TransactionId(nil), w.Transactions...), tid)
	return w
}

// WindDown carries accumulated hits back along the lane a WindUp
// arrived on.
type WindDown struct {
	Hops         []StarKey
	Transactions []TransactionId
	Hits         []Hit
	WindUp       WindUp
}

// Hit reports that Star matched the pattern. Hops is the hop count as
// the search computes it: the originator's own match is 0; a relay's
// match is len(WindUp.Hops)+1, where Hops already holds the originator's
// key, so a direct neighbour reports 2; each relay folding the hit back
// toward the originator adds 1.
type Hit struct {
	Star StarKey
	Hops int
}

// Hits is the collapsed result of a completed search transaction: one
// shortest-hop entry per star across every lane that reported, plus the
// raw per-lane contributions for diagnostics.
type Hits struct {
	Pattern  Pattern
	Hits     map[StarKey]int
	LaneHits map[LaneId]map[StarKey]int
}

// Nearest returns the lowest-hop hit, if any.
func (h Hits) Nearest() (Hit, bool) {
	var best Hit
	found := false
	for star, hops := range h.Hits {
		if !found || hops < best.Hops {
			best = Hit{Star: star, Hops: hops}
			found = true
		}
	}
	return best, found
}

// LaneId identifies the neighbour a lane connects to. A lane is
// addressed by the StarKey of the star at its far end.
type LaneId = StarKey

// LaneRouter is the narrow capability Searcher needs from the fabric
// layer: who its neighbours are, and how to flood/reply to them. Kept
// separate from any concrete transport type the same way pkg/traversal
// defines its own FabricRouter rather than importing pkg/fabric.
type LaneRouter interface {
	// Neighbors lists the stars reachable over a direct lane.
	Neighbors() []LaneId
	// Broadcast sends wind to every neighbour not in exclude.
	Broadcast(wind WindUp, exclude map[LaneId]struct{})
	// Forward sends down back along a single named lane.
	Forward(lane LaneId, down WindDown)
}
