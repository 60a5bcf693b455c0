package traversal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/wave"
)

// BindPropertyKey is the registry property key a particle's serialized
// bind source is stored under. The Field layer loads it from a point's
// Record.Properties before consulting generic layer logic.
const BindPropertyKey = "bind"

// MethodPattern matches a wave's Method against a BindConfig route. An
// empty Op means "any operation in this class".
type MethodPattern struct {
	Class wave.MethodClass
	Op    string // "" matches any op
}

func (p MethodPattern) Matches(m wave.Method) bool {
	if p.Class != m.Class {
		return false
	}
	return p.Op == "" || p.Op == m.Op
}

// StepKind discriminates the two pipeline block types a Route's
// pipeline is built from.
type StepKind int

const (
	StepRequest StepKind = iota
	StepResponse
)

// Step is one block in a route's pipeline: a substance pattern the body
// must satisfy (nil means no constraint) and an optional transform.
type Step struct {
	Kind      StepKind
	Pattern   *regexp.Regexp // matched against Substance.Text for Text bodies; nil = unconstrained
	Transform func(wave.Substance) wave.Substance
}

func (s Step) Check(body wave.Substance) error {
	if s.Pattern == nil {
		return nil
	}
	text, ok := body.ToText()
	if !ok {
		return starerr.Protocol("bind step pattern requires a Text substance")
	}
	if !s.Pattern.MatchString(text) {
		return fmt.Errorf("body %q does not match bind pattern %s: %w", text, s.Pattern.String(), starerr.ErrProtocol)
	}
	return nil
}

func (s Step) Apply(body wave.Substance) wave.Substance {
	if s.Transform == nil {
		return body
	}
	return s.Transform(body)
}

// StopActionKind discriminates what a route does once its pipeline
// completes.
type StopActionKind int

const (
	StopCore StopActionKind = iota
	StopCall
	StopRespond
	StopCapture
)

// StopAction is a route's terminal instruction: delegate to Core,
// Call another point (and relay its reply), Respond immediately with a
// literal core, or Capture the wave for another point to consume later.
type StopAction struct {
	Kind    StopActionKind
	Target  string // canonical point string, for Call/Capture
	Respond *wave.ReflectedCore
}

// Route is one entry of a BindConfig: a selector (method pattern + path
// regex) plus its pipeline and stop action.
type Route struct {
	Method   MethodPattern
	Path     *regexp.Regexp
	Request  []Step
	Response []Step
	Stop     StopAction
}

// Matches reports whether this route's selector applies to m/path.
func (r Route) Matches(m wave.Method, path string) bool {
	if !r.Method.Matches(m) {
		return false
	}
	if r.Path == nil {
		return true
	}
	return r.Path.MatchString(path)
}

// BindConfig is a particle's per-kind contract: an ordered list of
// routes, tried in order, the first matching one winning.
type BindConfig struct {
	Routes []Route
}

// Resolve returns the first route matching m/path, and false if none
// does (which the Field layer turns into a 404).
func (b BindConfig) Resolve(m wave.Method, path string) (Route, bool) {
	for _, r := range b.Routes {
		if r.Matches(m, path) {
			return r, true
		}
	}
	return Route{}, false
}

// sectionPattern recognizes a DSL section header, e.g. "Http<GET,/foo/.*>".
var sectionPattern = regexp.MustCompile(`^(Http|Ext|Cmd|Hyp)<([^,>]*),?([^>]*)>$`)

// ParseBindConfig parses the compact textual DSL described in spec §6:
// one route selector per non-blank, non-comment line, in the form
// `Http<METHOD,PATH> -> STOP` where METHOD may be empty (any), PATH is
// a regular expression that must match the whole path, and STOP is one
// of `core`, `call(POINT)`, `respond(STATUS)`, `capture(POINT)`.
// Pipeline steps aren't expressible in the line form; callers needing
// per-step patterns build Routes directly and append them to the
// parsed BindConfig's Routes slice.
func ParseBindConfig(input string) (BindConfig, error) {
	var cfg BindConfig
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		route, err := parseRouteLine(line)
		if err != nil {
			return BindConfig{}, starerr.NewParse(input, err.Error(), 0, i+1, 1)
		}
		cfg.Routes = append(cfg.Routes, route)
	}
	return cfg, nil
}

func parseRouteLine(line string) (Route, error) {
	parts := strings.SplitN(line, "->", 2)
	if len(parts) != 2 {
		return Route{}, fmt.Errorf("route line missing '->' stop action: %q", line)
	}
	selector := strings.TrimSpace(parts[0])
	stopText := strings.TrimSpace(parts[1])

	m := sectionPattern.FindStringSubmatch(selector)
	if m == nil {
		return Route{}, fmt.Errorf("malformed route selector: %q", selector)
	}
	class, err := parseMethodClass(m[1])
	if err != nil {
		return Route{}, err
	}
	op := strings.TrimSpace(m[2])
	pathText := strings.TrimSpace(m[3])

	var path *regexp.Regexp
	if pathText != "" {
		path, err = regexp.Compile("^(?:" + pathText + ")$")
		if err != nil {
			return Route{}, fmt.Errorf("invalid path regex %q: %w", pathText, err)
		}
	}

	stop, err := parseStopAction(stopText)
	if err != nil {
		return Route{}, err
	}

	return Route{Method: MethodPattern{Class: class, Op: op}, Path: path, Stop: stop}, nil
}

func parseMethodClass(s string) (wave.MethodClass, error) {
	switch s {
	case "Http":
		return wave.MethodHttp, nil
	case "Ext":
		return wave.MethodExt, nil
	case "Cmd":
		return wave.MethodCmd, nil
	case "Hyp":
		return wave.MethodHyp, nil
	default:
		return 0, fmt.Errorf("unknown method class: %q", s)
	}
}

func parseStopAction(s string) (StopAction, error) {
	switch {
	case s == "core":
		return StopAction{Kind: StopCore}, nil
	case strings.HasPrefix(s, "call(") && strings.HasSuffix(s, ")"):
		return StopAction{Kind: StopCall, Target: s[len("call(") : len(s)-1]}, nil
	case strings.HasPrefix(s, "capture(") && strings.HasSuffix(s, ")"):
		return StopAction{Kind: StopCapture, Target: s[len("capture(") : len(s)-1]}, nil
	case strings.HasPrefix(s, "respond(") && strings.HasSuffix(s, ")"):
		var status int
		if _, err := fmt.Sscanf(s[len("respond("):len(s)-1], "%d", &status); err != nil {
			return StopAction{}, fmt.Errorf("invalid respond status in %q: %w", s, err)
		}
		core := wave.ReflectedCore{Status: status}
		return StopAction{Kind: StopRespond, Respond: &core}, nil
	default:
		return StopAction{}, fmt.Errorf("unknown stop action: %q", s)
	}
}
