package starid

import (
	"strings"

	"github.com/starlane-io/starlane/pkg/starerr"
)

// BaseKind is the outermost tag of the Kind union.
type BaseKind int

const (
	KindRoot BaseKind = iota
	KindSpace
	KindUserBase
	KindBase
	KindUser
	KindApp
	KindMechtron
	KindFileSystem
	KindFile
	KindDatabase
	KindAuthenticator
	KindBundleSeries
	KindBundle
	KindArtifact
	KindControl
	KindProxy
	KindCredentials
	KindRepo
)

var baseKindNames = map[BaseKind]string{
	KindRoot:          "Root",
	KindSpace:         "Space",
	KindUserBase:      "UserBase",
	KindBase:          "Base",
	KindUser:          "User",
	KindApp:           "App",
	KindMechtron:      "Mechtron",
	KindFileSystem:    "FileSystem",
	KindFile:          "File",
	KindDatabase:      "Database",
	KindAuthenticator: "Authenticator",
	KindBundleSeries:  "BundleSeries",
	KindBundle:        "Bundle",
	KindArtifact:      "Artifact",
	KindControl:       "Control",
	KindProxy:         "Proxy",
	KindCredentials:   "Credentials",
	KindRepo:          "Repo",
}

var baseKindByName = func() map[string]BaseKind {
	m := make(map[string]BaseKind, len(baseKindNames))
	for k, v := range baseKindNames {
		m[v] = k
	}
	return m
}()

func (b BaseKind) String() string {
	if s, ok := baseKindNames[b]; ok {
		return s
	}
	return "Unknown"
}

// ParseBaseKind looks up a BaseKind by its canonical name.
func ParseBaseKind(s string) (BaseKind, error) {
	if b, ok := baseKindByName[s]; ok {
		return b, nil
	}
	return 0, starerr.NewParse(s, "unknown base kind", 0, 1, 1)
}

// SubKind further qualifies a BaseKind, e.g. Artifact's Raw/Dir/Bind/Wasm.
type SubKind string

const (
	SubNone SubKind = ""

	SubArtifactRaw  SubKind = "Raw"
	SubArtifactDir  SubKind = "Dir"
	SubArtifactBind SubKind = "Bind"
	SubArtifactWasm SubKind = "Wasm"
)

// Kind is a tagged union over BaseKind, with optional SubKind and
// Specific. Two kinds are equal iff all three components are equal.
type Kind struct {
	base     BaseKind
	sub      SubKind
	specific *Specific
}

func NewKind(base BaseKind) Kind { return Kind{base: base} }

func (k Kind) WithSub(sub SubKind) Kind {
	k.sub = sub
	return k
}

func (k Kind) WithSpecific(s Specific) Kind {
	k.specific = &s
	return k
}

func (k Kind) Base() BaseKind { return k.base }

func (k Kind) Sub() (SubKind, bool) {
	if k.sub == SubNone {
		return "", false
	}
	return k.sub, true
}

func (k Kind) Specific() (Specific, bool) {
	if k.specific == nil {
		return Specific{}, false
	}
	return *k.specific, true
}

func (k Kind) Equal(o Kind) bool {
	if k.base != o.base || k.sub != o.sub {
		return false
	}
	if (k.specific == nil) != (o.specific == nil) {
		return false
	}
	if k.specific != nil && !k.specific.Equal(*o.specific) {
		return false
	}
	return true
}

func (k Kind) String() string {
	s := k.base.String()
	if k.sub != SubNone {
		s += "<" + string(k.sub) + ">"
	}
	if k.specific != nil {
		s += "[" + k.specific.String() + "]"
	}
	return s
}

// KindTemplate is a partially-specified Kind (base required, sub and
// specific patterns optional) the registry materializes into a concrete
// Kind.
type KindTemplate struct {
	Base    BaseKind
	Sub     SubKind          // SubNone means "no sub-kind"
	Specific *SpecificPattern // nil means "no specific"
}

// Materialize produces a concrete Kind from the template. The specific
// pattern, if present, must resolve to exactly one Specific — callers
// that need pattern matching instead of construction should use
// KindSelector.
func (t KindTemplate) Materialize(specific *Specific) Kind {
	k := NewKind(t.Base).WithSub(t.Sub)
	if specific != nil {
		k = k.WithSpecific(*specific)
	}
	return k
}

// Pattern is a tri-state match element used by KindSelector: it either
// matches anything or an exact value.
type Pattern[T comparable] struct {
	any   bool
	exact T
}

func Any[T comparable]() Pattern[T]       { return Pattern[T]{any: true} }
func Exact[T comparable](v T) Pattern[T]  { return Pattern[T]{exact: v} }

func (p Pattern[T]) Matches(v T) bool {
	if p.any {
		return true
	}
	return p.exact == v
}

// KindSelector is a tri-pattern (base, sub, specific) drivers use to
// declare which kinds they serve. Structural matching: Any matches
// anything, Exact(v) matches only v.
type KindSelector struct {
	Base     Pattern[BaseKind]
	Sub      Pattern[SubKind]
	Specific *SpecificPattern // nil means "any specific, including none"
}

// SelectBase builds a selector matching any kind with the given base,
// regardless of sub or specific.
func SelectBase(b BaseKind) KindSelector {
	return KindSelector{Base: Exact(b), Sub: Any[SubKind]()}
}

// SelectBaseSub builds a selector matching an exact base and sub.
func SelectBaseSub(b BaseKind, sub SubKind) KindSelector {
	return KindSelector{Base: Exact(b), Sub: Exact(sub)}
}

func (s KindSelector) IsMatch(k Kind) bool {
	if !s.Base.Matches(k.base) {
		return false
	}
	if !s.Sub.Matches(k.sub) {
		return false
	}
	if s.Specific == nil {
		return true
	}
	spec, ok := k.Specific()
	if !ok {
		return false
	}
	return s.Specific.Matches(spec)
}

func (s KindSelector) String() string {
	var b strings.Builder
	if s.Base.any {
		b.WriteString("*")
	} else {
		b.WriteString(s.Base.exact.String())
	}
	if !s.Sub.any && s.Sub.exact != SubNone {
		b.WriteString("<")
		b.WriteString(string(s.Sub.exact))
		b.WriteString(">")
	}
	return b.String()
}
