package wave

import (
	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
)

// DirectedProto is a partially-filled builder for a directed wave (Ping,
// Ripple, or Signal). Fields are set via the chained With* methods;
// Build validates and assembles the final Wave plus its Reflection
// descriptor.
type DirectedProto struct {
	kind    Kind
	to      *Recipients
	from    *starid.Surface
	method  *Method
	agent   Agent
	scope   Scope
	handle  Handling
	body    Substance
	bounce  *BounceBacks
}

func NewDirectedProto(kind Kind) *DirectedProto {
	return &DirectedProto{kind: kind, agent: Anonymous, scope: FullScope, handle: DefaultHandling, body: Empty()}
}

func (d *DirectedProto) To(r Recipients) *DirectedProto       { d.to = &r; return d }
func (d *DirectedProto) From(s starid.Surface) *DirectedProto { d.from = &s; return d }
func (d *DirectedProto) Method(m Method) *DirectedProto       { d.method = &m; return d }
func (d *DirectedProto) Agent(a Agent) *DirectedProto         { d.agent = a; return d }
func (d *DirectedProto) Scope(s Scope) *DirectedProto         { d.scope = s; return d }
func (d *DirectedProto) Handling(h Handling) *DirectedProto   { d.handle = h; return d }
func (d *DirectedProto) Body(b Substance) *DirectedProto      { d.body = b; return d }
func (d *DirectedProto) BounceBacks(b BounceBacks) *DirectedProto { d.bounce = &b; return d }

// Build validates the proto against its kind's invariants and assembles
// the final Wave. Ping requires a single recipient; Ripple allows multi
// or stars; Signal ignores any bounce-backs override and always gets
// None, since it produces no reflection.
func (d *DirectedProto) Build() (Wave, error) {
	if d.method == nil {
		return Wave{}, starerr.Protocol("directed wave missing method")
	}
	if d.to == nil {
		return Wave{}, starerr.Protocol("directed wave missing to")
	}
	if d.from == nil {
		return Wave{}, starerr.Protocol("directed wave missing from")
	}

	switch d.kind {
	case KindPing:
		if d.to.Kind != RecipientsSingle {
			return Wave{}, starerr.Protocol("ping requires a single recipient")
		}
	case KindRipple:
		if d.to.Empty() {
			return Wave{}, starerr.Protocol("ripple requires at least one recipient")
		}
	case KindSignal:
		// any recipients shape is legal; no reflection is ever produced.
	default:
		return Wave{}, starerr.Protocol("not a directed kind: " + d.kind.String())
	}

	bounce := DefaultBounceBacks(d.kind)
	if d.bounce != nil {
		bounce = *d.bounce
	}
	if d.kind == KindSignal {
		bounce = NoBounce
	}

	w := Wave{
		Id:     NewId(),
		Kind:   d.kind,
		From:   *d.from,
		To:     *d.to,
		Agent:  d.agent,
		Scope:  d.scope,
		Handle: d.handle,
		Method: *d.method,
		Body:   d.body,
		Bounce: bounce,
	}

	if bounce.Kind != BounceNone {
		w.Reflection = &Reflection{Intended: Single(*d.from), ReflectionOf: w.Id, Source: *d.from}
	}

	return w, nil
}

// ReflectedProto builds a reflected wave (Pong or Echo) answering a
// prior directed wave.
type ReflectedProto struct {
	kind         Kind
	reflectionOf *Id
	from         *starid.Surface
	to           *Recipients
	core         ReflectedCore
}

func NewReflectedProto(kind Kind) *ReflectedProto {
	return &ReflectedProto{kind: kind}
}

func (r *ReflectedProto) ReflectionOf(id Id) *ReflectedProto        { r.reflectionOf = &id; return r }
func (r *ReflectedProto) From(s starid.Surface) *ReflectedProto     { r.from = &s; return r }
func (r *ReflectedProto) To(rec Recipients) *ReflectedProto         { r.to = &rec; return r }
func (r *ReflectedProto) Core(c ReflectedCore) *ReflectedProto      { r.core = c; return r }

func (r *ReflectedProto) Build() (Wave, error) {
	if r.reflectionOf == nil {
		return Wave{}, starerr.Protocol("reflected wave missing reflection_of")
	}
	if r.from == nil {
		return Wave{}, starerr.Protocol("reflected wave missing from")
	}
	if r.to == nil {
		return Wave{}, starerr.Protocol("reflected wave missing to")
	}
	if r.kind != KindPong && r.kind != KindEcho {
		return Wave{}, starerr.Protocol("not a reflected kind: " + r.kind.String())
	}
	return Wave{
		Id:           NewId(),
		Kind:         r.kind,
		From:         *r.from,
		To:           *r.to,
		Method:       Method{Class: MethodHttp, Op: "REFLECT"},
		Body:         r.core.Body,
		ReflectionOf: *r.reflectionOf,
		Status:       r.core.Status,
	}, nil
}
