package exchange

import "github.com/starlane-io/starlane/pkg/wave"

// AggregateKind discriminates the shape of a completed exchange.
type AggregateKind int

const (
	AggregateNone AggregateKind = iota
	AggregateOne
	AggregateMany
)

// ReflectedAggregate is what exchange(directed) eventually yields: no
// reflection expected, exactly one, or a collected batch (Count/Timer
// policies).
type ReflectedAggregate struct {
	Kind   AggregateKind
	Waves  []wave.Wave
}

func NoneAggregate() ReflectedAggregate { return ReflectedAggregate{Kind: AggregateNone} }

func OneAggregate(w wave.Wave) ReflectedAggregate {
	return ReflectedAggregate{Kind: AggregateOne, Waves: []wave.Wave{w}}
}

func ManyAggregate(ws []wave.Wave) ReflectedAggregate {
	return ReflectedAggregate{Kind: AggregateMany, Waves: ws}
}

// First returns the first (or only) collected wave, if any.
func (a ReflectedAggregate) First() (wave.Wave, bool) {
	if len(a.Waves) == 0 {
		return wave.Wave{}, false
	}
	return a.Waves[0], true
}
