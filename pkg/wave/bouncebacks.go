package wave

// BounceBacksKind discriminates how many reflections a directed wave's
// sender expects to collect.
type BounceBacksKind int

const (
	BounceNone BounceBacksKind = iota
	BounceSingle
	BounceCount
	BounceTimer
)

// BounceBacks is attached to every directed wave and consulted by the
// exchanger to decide when an exchange is complete.
type BounceBacks struct {
	Kind  BounceBacksKind
	Count int       // populated only when Kind == BounceCount
	Class WaitClass // populated only when Kind == BounceTimer
}

var NoBounce = BounceBacks{Kind: BounceNone}
var SingleBounce = BounceBacks{Kind: BounceSingle}

func CountBounce(n int) BounceBacks { return BounceBacks{Kind: BounceCount, Count: n} }
func TimerBounce(c WaitClass) BounceBacks { return BounceBacks{Kind: BounceTimer, Class: c} }

// DefaultBounceBacks returns the bounce-backs policy implied by a wave
// kind when the builder doesn't set one explicitly: Ripple defaults to
// collecting every reflection from a Count(n) fan-out, Ping expects a
// single reply, Signal expects none.
func DefaultBounceBacks(k Kind) BounceBacks {
	switch k {
	case KindRipple:
		return CountBounce(1)
	case KindPing:
		return SingleBounce
	default:
		return NoBounce
	}
}
