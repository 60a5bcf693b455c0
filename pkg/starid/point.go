package starid

import (
	"strings"

	"github.com/starlane-io/starlane/pkg/starerr"
)

// Point is an immutable, hierarchical name for a particle: a Route plus
// an ordered sequence of Segments. Two points are equal iff their
// normalized representations are equal; the empty point is illegal
// except as the bare Root.
type Point struct {
	route Route
	segs  []Segment
}

// RootPoint is the single legal empty point.
func RootPoint(route Route) Point {
	return Point{route: route, segs: []Segment{Root}}
}

// NewPoint builds a point from a route and segments, prepending Root if
// the caller omitted it. It does not canonicalize Pop segments; use
// Parse for untrusted input.
func NewPoint(route Route, segs ...Segment) Point {
	if len(segs) == 0 || segs[0].Kind != SegRoot {
		segs = append([]Segment{Root}, segs...)
	}
	return Point{route: route, segs: segs}
}

func (p Point) Route() Route         { return p.route }
func (p Point) Segments() []Segment  { return append([]Segment(nil), p.segs...) }
func (p Point) Len() int             { return len(p.segs) }
func (p Point) Last() Segment        { return p.segs[len(p.segs)-1] }
func (p Point) IsRoot() bool         { return len(p.segs) == 1 && p.segs[0].Kind == SegRoot }

// Equal compares the normalized representation: route and every
// segment, in order.
func (p Point) Equal(o Point) bool {
	if !p.route.Equal(o.route) || len(p.segs) != len(o.segs) {
		return false
	}
	for i := range p.segs {
		if !p.segs[i].Equal(o.segs[i]) {
			return false
		}
	}
	return true
}

// Hash is a structural hash suitable for map keys; it is just the
// canonical string, which is already unique per equal point.
func (p Point) Hash() string { return p.String() }

// String renders the exact canonical textual form. Rendering is the
// exact inverse of Parse.
func (p Point) String() string {
	var b strings.Builder
	b.WriteString(p.route.String())

	inFilesystem := false
	first := true
	for _, s := range p.segs {
		switch s.Kind {
		case SegRoot:
			continue
		case SegFilesystemRoot:
			if !first {
				b.WriteString(":")
			}
			b.WriteString("/")
			inFilesystem = true
			continue
		case SegDir, SegFile:
			if !inFilesystem {
				// Shouldn't happen for a validated point; render raw.
				inFilesystem = true
			}
			b.WriteString(s.String())
			continue
		case SegVersion:
			b.WriteString(":")
			b.WriteString(s.Value)
			continue
		}
		if !first {
			b.WriteString(":")
		}
		b.WriteString(s.Value)
		first = false
	}
	return b.String()
}

// Parent returns the point with its last segment removed. Popping past
// Root is an error.
func (p Point) Parent() (Point, error) {
	if p.IsRoot() {
		return Point{}, starerr.Protocol("point has no parent: root")
	}
	return Point{route: p.route, segs: p.segs[:len(p.segs)-1]}, nil
}

// Push appends a new segment, choosing its kind from context: across a
// filesystem-root boundary it produces File/Dir segments (Dir if
// trailing is true); anywhere else it produces Base segments, unless
// this is the first non-root segment under a point with no segments
// yet, in which case it produces a Space segment.
func (p Point) Push(name string, trailing bool) (Point, error) {
	last := p.Last()
	var seg Segment
	switch {
	case last.Kind.IsFilesystem():
		if trailing {
			seg = Dir(name)
		} else {
			seg = File(name)
		}
	case last.Kind == SegRoot:
		seg = Space(name)
	default:
		seg = Base(name)
	}
	if !seg.Valid() {
		return Point{}, starerr.Protocol("invalid segment for push: " + name)
	}
	segs := append(append([]Segment(nil), p.segs...), seg)
	return Point{route: p.route, segs: segs}, nil
}

// PushFilesystemRoot opens the filesystem section of the point.
func (p Point) PushFilesystemRoot() (Point, error) {
	if p.Last().Kind.IsFilesystem() {
		return Point{}, starerr.Protocol("filesystem root already open")
	}
	segs := append(append([]Segment(nil), p.segs...), FilesystemRootSeg)
	return Point{route: p.route, segs: segs}, nil
}

// PushVersion appends a Version segment. Per invariant, version segments
// only appear at bundle depth: the point must consist of Root followed
// by exactly three Space/Base segments (space, bundle-series, bundle).
func (p Point) PushVersion(semver string) (Point, error) {
	seg := Version(semver)
	if !seg.Valid() {
		return Point{}, starerr.Protocol("invalid semver: " + semver)
	}
	if !p.atBundleDepth() {
		return Point{}, starerr.Protocol("version segment requires bundle depth (space:bundle-series:bundle)")
	}
	segs := append(append([]Segment(nil), p.segs...), seg)
	return Point{route: p.route, segs: segs}, nil
}

func (p Point) atBundleDepth() bool {
	if len(p.segs) != 4 {
		return false
	}
	if p.segs[0].Kind != SegRoot {
		return false
	}
	for _, s := range p.segs[1:] {
		if s.Kind != SegSpace && s.Kind != SegBase {
			return false
		}
	}
	return true
}

// IsBundle reports whether this point names a bundle series member
// (three skewer segments past root) without a version yet attached.
func (p Point) IsBundle() bool {
	return p.atBundleDepth()
}

// ToBundle truncates a deeper point back to its owning bundle
// (space:bundle-series:bundle[:version]).
func (p Point) ToBundle() (Point, error) {
	depth := 0
	for i, s := range p.segs {
		if s.Kind == SegSpace || s.Kind == SegBase {
			depth = i
		}
		if s.Kind == SegVersion {
			depth = i
			break
		}
		if s.Kind.IsFilesystem() {
			break
		}
	}
	if depth < 3 {
		return Point{}, starerr.Protocol("point has no bundle ancestor: " + p.String())
	}
	return Point{route: p.route, segs: append([]Segment(nil), p.segs[:depth+1]...)}, nil
}

// Filepath returns the "/"-joined path beneath the filesystem root, for
// points that contain one. The leading "/" is included.
func (p Point) Filepath() (string, error) {
	idx := -1
	for i, s := range p.segs {
		if s.Kind == SegFilesystemRoot {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", starerr.NotFound("point has no filesystem root: " + p.String())
	}
	var b strings.Builder
	b.WriteString("/")
	for _, s := range p.segs[idx+1:] {
		b.WriteString(s.String())
	}
	return strings.TrimSuffix(b.String(), "/") + trailingSlash(p.Last()), nil
}

func trailingSlash(last Segment) string {
	if last.Kind == SegDir || last.Kind == SegFilesystemRoot {
		return "/"
	}
	return ""
}

// TruncateFilepath rewrites the point so its filesystem section is
// relative to the given ancestor's filesystem root instead of its own,
// i.e. it drops everything up to and including parent's segments and
// re-roots the remainder under parent.
func (p Point) TruncateFilepath(parent Point) (Point, error) {
	rel, err := p.RelativeSegs(parent)
	if err != nil {
		return Point{}, err
	}
	segs := append([]Segment(nil), parent.segs...)
	segs = append(segs, rel...)
	return Point{route: parent.route, segs: segs}, nil
}

// RelativeSegs returns the segments of p that extend beyond ancestor,
// provided ancestor is a structural prefix of p.
func (p Point) RelativeSegs(ancestor Point) ([]Segment, error) {
	if len(ancestor.segs) > len(p.segs) {
		return nil, starerr.Protocol("not an ancestor: " + ancestor.String())
	}
	for i, s := range ancestor.segs {
		if !s.Equal(p.segs[i]) {
			return nil, starerr.Protocol("not an ancestor: " + ancestor.String())
		}
	}
	return append([]Segment(nil), p.segs[len(ancestor.segs):]...), nil
}
