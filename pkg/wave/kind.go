package wave

// Kind discriminates the five wave shapes. Ping/Ripple/Signal are
// directed (sent toward a particle); Pong/Echo are their reflections.
type Kind int

const (
	KindPing Kind = iota
	KindPong
	KindRipple
	KindEcho
	KindSignal
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "Ping"
	case KindPong:
		return "Pong"
	case KindRipple:
		return "Ripple"
	case KindEcho:
		return "Echo"
	case KindSignal:
		return "Signal"
	default:
		return "Unknown"
	}
}

// IsDirected reports whether this kind travels toward a particle rather
// than back from one.
func (k Kind) IsDirected() bool {
	return k == KindPing || k == KindRipple || k == KindSignal
}

// ReflectionKind returns the Kind a reflection of this directed kind
// must carry, and false if this kind produces no reflection (Signal).
func (k Kind) ReflectionKind() (Kind, bool) {
	switch k {
	case KindPing:
		return KindPong, true
	case KindRipple:
		return KindEcho, true
	default:
		return 0, false
	}
}
