package registry

import (
	"sync"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Local is a single-process, in-memory Registry guarded by a
// sync.RWMutex. It has no backing store and does not read through to
// the replicated registry; every non-Central star, tests, and
// single-star deployments use it standalone.
type Local struct {
	mu      sync.RWMutex
	records map[string]Record // keyed by Point.Hash()
}

// NewLocal builds an empty Local registry.
func NewLocal() *Local {
	return &Local{records: make(map[string]Record)}
}

func (l *Local) Locate(point starid.Point) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[point.Hash()]
	if !ok {
		return Record{}, starerr.NotFound("particle " + point.String())
	}
	return rec.clone(), nil
}

func (l *Local) Assign(point starid.Point, kind starid.Kind, star string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := point.Hash()
	if existing, ok := l.records[key]; ok {
		if existing.Owner == star {
			return nil
		}
		return starerr.Conflict("particle " + point.String() + " already assigned to " + existing.Owner)
	}

	l.records[key] = Record{
		Point:      point,
		Kind:       kind,
		Owner:      star,
		Status:     StatusAssigning,
		Properties: map[string]string{},
	}
	return nil
}

func (l *Local) Access(agent wave.Agent, point starid.Point) (Access, error) {
	l.mu.RLock()
	_, ok := l.records[point.Hash()]
	l.mu.RUnlock()
	if !ok {
		return Access{}, starerr.NotFound("particle " + point.String())
	}

	if agent.Kind == wave.AgentHyperUser {
		return FullAccess, nil
	}
	if agent.Kind == wave.AgentPoint && agent.Point == point.String() {
		return FullAccess, nil
	}
	if agent.Kind == wave.AgentAnonymous {
		return Access{Read: true, DeniedReason: "anonymous agents may only read"}, nil
	}
	return Access{Read: true, Write: true}, nil
}

func (l *Local) SetStatus(point starid.Point, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := point.Hash()
	rec, ok := l.records[key]
	if !ok {
		return starerr.NotFound("particle " + point.String())
	}
	rec.Status = status
	l.records[key] = rec
	return nil
}

func (l *Local) SetProperties(point starid.Point, props map[string]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := point.Hash()
	rec, ok := l.records[key]
	if !ok {
		return starerr.NotFound("particle " + point.String())
	}
	if rec.Properties == nil {
		rec.Properties = map[string]string{}
	}
	for k, v := range props {
		rec.Properties[k] = v
	}
	l.records[key] = rec
	return nil
}

func (l *Local) ListChildren(parent starid.Point, selector *starid.KindSelector) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var children []Record
	for _, rec := range l.records {
		segs, err := rec.Point.RelativeSegs(parent)
		if err != nil || len(segs) != 1 {
			continue
		}
		if selector != nil && !selector.IsMatch(rec.Kind) {
			continue
		}
		children = append(children, rec.clone())
	}
	return children, nil
}
