package wave

import (
	"fmt"

	"github.com/starlane-io/starlane/pkg/starid"
)

// Wave is the concrete message passed between stars and particles. A
// directed wave has ReflectionOf unset and Reflection populated (unless
// it's a Signal, see Reflection.Make); a reflected wave has ReflectionOf
// set and Reflection unset.
type Wave struct {
	Id     Id
	Kind   Kind
	From   starid.Surface
	To     Recipients
	Agent  Agent
	Scope  Scope
	Handle Handling
	Method Method
	Body   Substance

	// Directed-only.
	Bounce     BounceBacks
	Reflection *Reflection

	// Reflected-only.
	ReflectionOf Id
	Status       int
}

func (w Wave) IsDirected() bool { return w.Kind.IsDirected() }

func (w Wave) String() string {
	return fmt.Sprintf("%s[%s] %s -> %s %s", w.Kind, w.Id, w.From, w.To.String(), w.Method)
}

func (r Recipients) String() string {
	switch r.Kind {
	case RecipientsSingle:
		if s, ok := r.One(); ok {
			return s.String()
		}
		return "single(?)"
	case RecipientsMulti:
		return fmt.Sprintf("multi(%d)", len(r.Surfaces))
	default:
		return fmt.Sprintf("stars(%d)", len(r.Stars))
	}
}

// Reflection is the descriptor every built directed wave (other than
// Signal) exposes: who the reply is intended for, which wave it answers,
// and the surface it will appear to come from.
type Reflection struct {
	Intended     Recipients
	ReflectionOf Id
	Source       starid.Surface
}

// Make constructs the reflected wave (Pong for Ping, Echo for Ripple)
// that answers this directed wave's Reflection, carrying core as its
// body/status and appearing to come from `from`.
func (r *Reflection) Make(core ReflectedCore, from starid.Surface, kind Kind) Wave {
	return Wave{
		Id:           NewId(),
		Kind:         kind,
		From:         from,
		To:           r.Intended,
		Method:       Method{Class: MethodHttp, Op: "REFLECT"},
		Body:         core.Body,
		ReflectionOf: r.ReflectionOf,
		Status:       core.Status,
	}
}

// ReflectedCore is what a driver (or the exchanger, on timeout) hands
// back to become a reflected wave's status+body.
type ReflectedCore struct {
	Status  int
	Headers map[string]string
	Body    Substance
}

func Ok(body Substance) ReflectedCore { return ReflectedCore{Status: 200, Body: body} }

func ErrCore(status int, msg string) ReflectedCore {
	return ReflectedCore{Status: status, Body: Errors(msg)}
}

// CoreBounceKind discriminates what a driver does with a wave once it
// reaches Core.
type CoreBounceKind int

const (
	CoreReflected CoreBounceKind = iota
	CoreAbsorbed
)

// CoreBounce is a driver's verdict on a wave that reached Core: either
// it produces a reflection, or it absorbs the wave silently (the only
// legal outcome for a Signal, which has no reflection path).
type CoreBounce struct {
	Kind CoreBounceKind
	Core ReflectedCore
}

func Reflected(core ReflectedCore) CoreBounce {
	return CoreBounce{Kind: CoreReflected, Core: core}
}

func Absorbed() CoreBounce { return CoreBounce{Kind: CoreAbsorbed} }
