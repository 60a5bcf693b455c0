package wave

import "github.com/starlane-io/starlane/pkg/starid"

// RecipientsKind discriminates the shape of a directed wave's
// destination.
type RecipientsKind int

const (
	RecipientsSingle RecipientsKind = iota
	RecipientsMulti
	RecipientsStars
)

// Recipients is the "to" of a directed wave: exactly one surface
// (Single, required for Ping), a set of surfaces (Multi, required for
// Ripple), or a set of stars addressed directly (Stars, used by search
// and wrangler traffic).
type Recipients struct {
	Kind     RecipientsKind
	Surfaces []starid.Surface
	Stars    []string
}

func Single(s starid.Surface) Recipients {
	return Recipients{Kind: RecipientsSingle, Surfaces: []starid.Surface{s}}
}

func Multi(surfaces ...starid.Surface) Recipients {
	return Recipients{Kind: RecipientsMulti, Surfaces: surfaces}
}

func Stars(keys ...string) Recipients {
	return Recipients{Kind: RecipientsStars, Stars: keys}
}

// One returns the single surface for RecipientsSingle, and false
// otherwise.
func (r Recipients) One() (starid.Surface, bool) {
	if r.Kind != RecipientsSingle || len(r.Surfaces) != 1 {
		return starid.Surface{}, false
	}
	return r.Surfaces[0], true
}

func (r Recipients) Empty() bool {
	switch r.Kind {
	case RecipientsStars:
		return len(r.Stars) == 0
	default:
		return len(r.Surfaces) == 0
	}
}
