package starid

import (
	"strings"

	"github.com/starlane-io/starlane/pkg/starerr"
)

// ParsePoint is the single deterministic parser from text to Point.
// Grammar: [Route "::"] Segment (":" Segment)*, where a leading "/"
// opens the filesystem-root section and subsequent segments are
// "/"-separated until the input is exhausted.
func ParsePoint(input string) (Point, error) {
	p := &pointParser{input: input}
	route := p.parseRoute()
	segs, err := p.parseSegments()
	if err != nil {
		return Point{}, err
	}
	if p.pos != len(p.input) {
		return Point{}, p.errAt("trailing input after point")
	}
	pt := Point{route: route, segs: segs}
	if err := validate(pt); err != nil {
		return Point{}, err
	}
	return pt, nil
}

type pointParser struct {
	input string
	pos   int
}

func (p *pointParser) errAt(label string) error {
	line, col := 1, 1
	for i := 0; i < p.pos && i < len(p.input); i++ {
		if p.input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return starerr.NewParse(p.input, label, p.pos, line, col)
}

func (p *pointParser) parseRoute() Route {
	if idx := strings.Index(p.input[p.pos:], "::"); idx >= 0 {
		prefix := p.input[p.pos : p.pos+idx]
		switch {
		case prefix == "GLOBAL":
			p.pos += idx + 2
			return GlobalRoute
		case strings.HasPrefix(prefix, "STAR(") && strings.HasSuffix(prefix, ")"):
			key := prefix[len("STAR(") : len(prefix)-1]
			p.pos += idx + 2
			return StarRoute(key)
		case prefix != "" && !strings.ContainsAny(prefix, ":/"):
			// A bare domain-looking prefix (contains a '.', no ':'),
			// distinct from a bare first Space segment which never
			// contains "::" by construction of skewer-case.
			if strings.Contains(prefix, ".") {
				p.pos += idx + 2
				return DomainRoute(prefix)
			}
		}
	}
	return LocalRoute
}

// parseSegments consumes the skewer-segment section first, then, if a
// "/" is encountered, switches to filesystem parsing for the remainder.
func (p *pointParser) parseSegments() ([]Segment, error) {
	segs := []Segment{Root}
	if p.pos >= len(p.input) {
		return segs, nil
	}

	inFilesystem := false
	first := true
	for p.pos < len(p.input) {
		if !inFilesystem {
			if !first {
				if p.input[p.pos] != ':' {
					return nil, p.errAt("expected ':' between segments")
				}
				p.pos++
			}
			first = false

			if p.pos < len(p.input) && p.input[p.pos] == '/' {
				p.pos++
				segs = append(segs, FilesystemRootSeg)
				inFilesystem = true
				continue
			}

			tok := p.takeUntil(":")
			if tok == "" {
				return nil, p.errAt("empty segment")
			}
			seg, err := p.classifySkewer(tok, segs)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			continue
		}

		// Filesystem section: "/"-joined until end of input.
		tok := p.takeUntil("")
		parts := strings.Split(tok, "/")
		trailingSlash := strings.HasSuffix(tok, "/")
		for i, part := range parts {
			if part == "" {
				continue
			}
			if part == ".." {
				segs = append(segs, PopSeg)
				continue
			}
			isLast := i == len(parts)-1
			if isLast && !trailingSlash {
				segs = append(segs, File(part))
			} else {
				segs = append(segs, Dir(part))
			}
		}
		break
	}

	return canonicalize(segs)
}

func (p *pointParser) classifySkewer(tok string, existing []Segment) (Segment, error) {
	if isSemver(tok) {
		return Version(tok), nil
	}
	if tok == ".." {
		return PopSeg, nil
	}
	if len(existing) == 1 {
		s := Space(tok)
		if !s.Valid() {
			return Segment{}, p.errAt("invalid space segment: " + tok)
		}
		return s, nil
	}
	s := Base(tok)
	if !s.Valid() {
		return Segment{}, p.errAt("invalid base segment: " + tok)
	}
	return s, nil
}

func isSemver(s string) bool { return semverPattern.MatchString(s) }

func (p *pointParser) takeUntil(stopChars string) string {
	start := p.pos
	for p.pos < len(p.input) {
		if stopChars != "" && strings.ContainsRune(stopChars, rune(p.input[p.pos])) {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

// canonicalize resolves Pop segments in place, since a canonicalized
// point never contains one.
func canonicalize(segs []Segment) ([]Segment, error) {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Kind == SegPop {
			if len(out) <= 1 {
				return nil, starerr.Protocol("pop past root")
			}
			out = out[:len(out)-1]
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// validate enforces the point-level invariants that span multiple
// segments: version only at bundle depth, File only after a filesystem
// root, no bare Pop, non-empty except as Root.
func validate(p Point) error {
	for i, s := range p.segs {
		switch s.Kind {
		case SegPop:
			return starerr.Protocol("pop segment survived canonicalization")
		case SegVersion:
			if i != 4 || !p.atBundleDepthAt(i) {
				return starerr.Protocol("version segment not at bundle depth: " + p.String())
			}
		case SegFile, SegDir:
			if !hasFilesystemRootBefore(p.segs, i) {
				return starerr.Protocol("file/dir segment without preceding filesystem root: " + p.String())
			}
		}
	}
	return nil
}

func (p Point) atBundleDepthAt(versionIdx int) bool {
	if versionIdx != 4 {
		return false
	}
	for _, s := range p.segs[1:4] {
		if s.Kind != SegSpace && s.Kind != SegBase {
			return false
		}
	}
	return true
}

func hasFilesystemRootBefore(segs []Segment, idx int) bool {
	for i := idx - 1; i >= 0; i-- {
		if segs[i].Kind == SegFilesystemRoot {
			return true
		}
		if segs[i].Kind != SegFile && segs[i].Kind != SegDir && segs[i].Kind != SegFilesystemRoot {
			return false
		}
	}
	return false
}
