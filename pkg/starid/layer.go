package starid

// Layer is one stop in a particle's per-particle traversal pipeline.
type Layer int

const (
	LayerGravity Layer = iota
	LayerField
	LayerShell
	LayerPortal
	LayerHost
	LayerGuest
	LayerCore
)

func (l Layer) String() string {
	switch l {
	case LayerGravity:
		return "Gravity"
	case LayerField:
		return "Field"
	case LayerShell:
		return "Shell"
	case LayerPortal:
		return "Portal"
	case LayerHost:
		return "Host"
	case LayerGuest:
		return "Guest"
	case LayerCore:
		return "Core"
	default:
		return "Unknown"
	}
}

// TopicKind discriminates the Topic variants a Surface may carry.
type TopicKind int

const (
	TopicNone TopicKind = iota
	TopicAny
	TopicNot
	TopicUuid
	TopicPath
	TopicCli
)

// Topic narrows a Surface to a sub-address within a layer (e.g. a
// specific request-scoped handler registered by point+uuid).
type Topic struct {
	Kind  TopicKind
	Value string
}

var NoTopic = Topic{Kind: TopicNone}
var AnyTopic = Topic{Kind: TopicAny}

func UuidTopic(id string) Topic { return Topic{Kind: TopicUuid, Value: id} }
func PathTopic(path string) Topic { return Topic{Kind: TopicPath, Value: path} }
func CliTopic(id string) Topic  { return Topic{Kind: TopicCli, Value: id} }
func NotTopic(value string) Topic { return Topic{Kind: TopicNot, Value: value} }

func (t Topic) String() string {
	switch t.Kind {
	case TopicNone:
		return ""
	case TopicAny:
		return "#"
	case TopicNot:
		return "!" + t.Value
	case TopicUuid:
		return "@" + t.Value
	case TopicPath:
		return t.Value
	case TopicCli:
		return "$" + t.Value
	default:
		return ""
	}
}

// Matches reports whether this topic selector (as registered by a
// handler) matches a concrete topic carried by an incoming wave.
func (t Topic) Matches(other Topic) bool {
	switch t.Kind {
	case TopicAny:
		return true
	case TopicNot:
		return other.Kind != TopicNone && other.Value != t.Value
	default:
		return t.Kind == other.Kind && t.Value == other.Value
	}
}

func (t Topic) Equal(o Topic) bool { return t.Kind == o.Kind && t.Value == o.Value }

// Surface identifies both where in the cluster and where in the
// per-particle pipeline a wave targets: a Point, a Layer, and a Topic.
type Surface struct {
	Point Point
	Layer Layer
	Topic Topic
}

func NewSurface(point Point, layer Layer, topic Topic) Surface {
	return Surface{Point: point, Layer: layer, Topic: topic}
}

// AtLayer returns a copy of this surface targeting a different layer,
// with the topic reset to None — used when the traversal engine
// re-injects a wave at a new layer.
func (s Surface) AtLayer(layer Layer) Surface {
	return Surface{Point: s.Point, Layer: layer, Topic: NoTopic}
}

func (s Surface) String() string {
	str := s.Point.String() + "@" + s.Layer.String()
	if s.Topic.Kind != TopicNone {
		str += "+" + s.Topic.String()
	}
	return str
}

func (s Surface) Equal(o Surface) bool {
	return s.Point.Equal(o.Point) && s.Layer == o.Layer && s.Topic.Equal(o.Topic)
}
