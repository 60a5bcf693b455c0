package wave

import "fmt"

// Agent identifies who is asking: an anonymous caller, the privileged
// hyper-user used by internal star operations, or a specific particle
// acting as itself.
type AgentKind int

const (
	AgentAnonymous AgentKind = iota
	AgentHyperUser
	AgentPoint
)

type Agent struct {
	Kind  AgentKind
	Point string // populated only when Kind == AgentPoint; canonical point string
}

var Anonymous = Agent{Kind: AgentAnonymous}
var HyperUser = Agent{Kind: AgentHyperUser}

func PointAgent(point string) Agent { return Agent{Kind: AgentPoint, Point: point} }

func (a Agent) String() string {
	switch a.Kind {
	case AgentAnonymous:
		return "anonymous"
	case AgentHyperUser:
		return "hyperuser"
	case AgentPoint:
		return a.Point
	default:
		return "unknown"
	}
}

// Scope narrows what an agent may do beyond plain access control, e.g.
// restricting a session to a sub-tree of points. An empty scope imposes
// no restriction beyond the registry's own access checks.
type Scope struct {
	Roots []string // canonical point strings the agent is confined to
}

var FullScope = Scope{}

func (s Scope) Unrestricted() bool { return len(s.Roots) == 0 }

// WaitClass names a latency budget resolved to a concrete duration by a
// Timeouts table (see pkg/exchange).
type WaitClass int

const (
	WaitFast WaitClass = iota
	WaitMed
	WaitSlow
)

func (w WaitClass) String() string {
	switch w {
	case WaitFast:
		return "Fast"
	case WaitMed:
		return "Med"
	case WaitSlow:
		return "Slow"
	default:
		return "Unknown"
	}
}

// Priority is a coarse scheduling hint consulted by the star's queues.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityStandard
	PriorityHigh
)

// Handling carries priority, karma (an anti-starvation credit consumed
// by repeated low-priority sends) and the wait class used to resolve
// exchanger timeouts.
type Handling struct {
	Priority Priority
	Karma    int
	Wait     WaitClass
}

var DefaultHandling = Handling{Priority: PriorityStandard, Wait: WaitMed}

// MethodClass discriminates the four operation namespaces a wave's
// Method may address.
type MethodClass int

const (
	MethodHyp MethodClass = iota
	MethodCmd
	MethodHttp
	MethodExt
)

func (c MethodClass) String() string {
	switch c {
	case MethodHyp:
		return "Hyp"
	case MethodCmd:
		return "Cmd"
	case MethodHttp:
		return "Http"
	case MethodExt:
		return "Ext"
	default:
		return "Unknown"
	}
}

// Method is the operation a directed wave invokes: a namespace class
// plus an operation name (e.g. Http+"GET", Hyp+"Assign").
type Method struct {
	Class MethodClass
	Op    string
}

func (m Method) String() string { return fmt.Sprintf("%s<%s>", m.Class, m.Op) }

func (m Method) Equal(o Method) bool { return m.Class == o.Class && m.Op == o.Op }
