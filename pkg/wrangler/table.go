package wrangler

import (
	"sort"
	"sync"

	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/starerr"
)

// Row is one known peer star: its kind, an optional hop distance from a
// prior search, and a selection counter Next uses for round-robin
// fairness within a kind.
type Row struct {
	Key        search.StarKey
	Kind       search.StarKind
	Hops       *int
	Selections int
}

// Selector is a conjunction of row filters. An empty Selector matches
// every row.
type Selector struct {
	kind    search.StarKind
	hasKind bool
	minHops bool
}

// ForKind restricts a selector to rows of the given kind.
func ForKind(kind search.StarKind) Selector {
	return Selector{kind: kind, hasKind: true}
}

// WithMinHops further restricts a selector to the rows at the minimum
// hop distance among whatever it already matches. Rows with no hop
// distance recorded are excluded once this is set, since they have
// nothing to compare.
func (s Selector) WithMinHops() Selector {
	s.minHops = true
	return s
}

// Table is the wrangler's in-memory, single-star-owned table of known
// peer stars, keyed by StarKey.
type Table struct {
	mu   sync.Mutex
	rows map[search.StarKey]*Row
}

func NewTable() *Table {
	return &Table{rows: make(map[search.StarKey]*Row)}
}

// Add upserts a row. An existing row's selection counter is preserved
// across an upsert — refreshing a peer's kind or hop distance (e.g.
// after a fresh search) shouldn't reset its round-robin fairness.
func (t *Table) Add(row Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.rows[row.Key]; ok {
		row.Selections = existing.Selections
	}
	t.rows[row.Key] = &row
}

// Select returns every row matching selector.
func (t *Table) Select(selector Selector) []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectLocked(selector)
}

// Size reports how many peer stars this table currently tracks, for
// metrics collection.
func (t *Table) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (t *Table) selectLocked(selector Selector) []Row {
	var matched []Row
	for _, row := range t.rows {
		if selector.hasKind && row.Kind != selector.kind {
			continue
		}
		matched = append(matched, *row)
	}
	if selector.minHops {
		matched = filterMinHops(matched)
	}
	return matched
}

func filterMinHops(rows []Row) []Row {
	min := -1
	for _, r := range rows {
		if r.Hops == nil {
			continue
		}
		if mn := *r.Hops; min == -1 || mn < min {
			min = mn
		}
	}
	if min == -1 {
		return nil
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Hops != nil && *r.Hops == min {
			out = append(out, r)
		}
	}
	return out
}

// Next filters by selector, then returns the row with the lowest
// selection counter, incrementing it. Ties break on the
// lexicographically lower StarKey, so repeated calls over an unchanging
// table are deterministic.
func (t *Table) Next(selector Selector) (Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	matched := t.selectLocked(selector)
	if len(matched) == 0 {
		return Row{}, starerr.NotFound("no star available for wrangler selector")
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Selections != matched[j].Selections {
			return matched[i].Selections < matched[j].Selections
		}
		return matched[i].Key < matched[j].Key
	})

	winner := matched[0]
	row := t.rows[winner.Key]
	row.Selections++
	return *row, nil
}

// Satisfaction reports whether every required kind has at least one
// known row.
type Satisfaction struct {
	Lacking []search.StarKind
}

func (s Satisfaction) OK() bool { return len(s.Lacking) == 0 }

// Satisfied checks the table against a set of required kinds.
func (t *Table) Satisfied(required []search.StarKind) Satisfaction {
	t.mu.Lock()
	defer t.mu.Unlock()

	var lacking []search.StarKind
	for _, kind := range required {
		found := false
		for _, row := range t.rows {
			if row.Kind == kind {
				found = true
				break
			}
		}
		if !found {
			lacking = append(lacking, kind)
		}
	}
	return Satisfaction{Lacking: lacking}
}
