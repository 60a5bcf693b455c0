package search

import "fmt"

type patternKind int

const (
	patternAny patternKind = iota
	patternNone
	patternStarKey
	patternStarKind
)

// Pattern selects which star(s) a WindUp is hunting for: every star
// (Any), no star (None, used mostly for flag-accumulation sweeps), an
// exact StarKey, or any star of a given StarKind.
type Pattern struct {
	kind  patternKind
	key   StarKey
	sKind StarKind
}

func Any() Pattern                  { return Pattern{kind: patternAny} }
func None() Pattern                 { return Pattern{kind: patternNone} }
func Key(key StarKey) Pattern       { return Pattern{kind: patternStarKey, key: key} }
func OfKind(kind StarKind) Pattern  { return Pattern{kind: patternStarKind, sKind: kind} }

// IsSingleMatch reports whether this pattern can match at most one
// star. Only an exact StarKey pattern qualifies, since StarKeys are
// unique in the mesh; Any and OfKind may match many stars.
func (p Pattern) IsSingleMatch() bool { return p.kind == patternStarKey }

// Matches reports whether the star identified by (star, kind) satisfies
// the pattern.
func (p Pattern) Matches(star StarKey, kind StarKind) bool {
	switch p.kind {
	case patternAny:
		return true
	case patternStarKey:
		return p.key == star
	case patternStarKind:
		return p.sKind == kind
	default:
		return false
	}
}

func (p Pattern) String() string {
	switch p.kind {
	case patternAny:
		return "Any"
	case patternNone:
		return "None"
	case patternStarKey:
		return fmt.Sprintf("Key(%s)", p.key)
	case patternStarKind:
		return fmt.Sprintf("Kind(%s)", p.sKind)
	default:
		return "Unknown"
	}
}

// Action distinguishes what a WindDown carries back: the full per-star
// hop map (SearchHits), or a simple presence flag for callers that only
// care whether the pattern matched anywhere (FlagAccumulation). Both
// ride the same transaction machinery; Action only affects how a
// caller interprets the resulting Hits.
type Action int

const (
	ActionSearchHits Action = iota
	ActionFlagAccumulation
)
