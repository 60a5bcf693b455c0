package starid

import (
	"regexp"
)

// SegmentKind discriminates the lexical convention a Segment follows.
type SegmentKind int

const (
	SegRoot SegmentKind = iota
	SegSpace
	SegBase
	SegFilesystemRoot
	SegDir
	SegFile
	SegVersion
	SegPop
)

func (k SegmentKind) String() string {
	switch k {
	case SegRoot:
		return "Root"
	case SegSpace:
		return "Space"
	case SegBase:
		return "Base"
	case SegFilesystemRoot:
		return "FilesystemRoot"
	case SegDir:
		return "Dir"
	case SegFile:
		return "File"
	case SegVersion:
		return "Version"
	case SegPop:
		return "Pop"
	default:
		return "Unknown"
	}
}

// IsFilesystem reports whether a segment kind belongs to the filesystem
// section of a point (everything from the FilesystemRoot onward).
func (k SegmentKind) IsFilesystem() bool {
	return k == SegFilesystemRoot || k == SegDir || k == SegFile
}

var (
	skewerPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)
	filePattern   = regexp.MustCompile(`^[^/:]+$`)
)

// Segment is one component of a Point.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// Root is the canonical root segment, present implicitly at the start
// of every non-empty point.
var Root = Segment{Kind: SegRoot}

func Space(name string) Segment { return Segment{Kind: SegSpace, Value: name} }
func Base(name string) Segment  { return Segment{Kind: SegBase, Value: name} }
func Dir(name string) Segment   { return Segment{Kind: SegDir, Value: name} }
func File(name string) Segment  { return Segment{Kind: SegFile, Value: name} }
func Version(semver string) Segment {
	return Segment{Kind: SegVersion, Value: semver}
}

// FilesystemRootSeg is the "/" segment that opens the filesystem section
// of a point.
var FilesystemRootSeg = Segment{Kind: SegFilesystemRoot, Value: "/"}

// PopSeg is ".."; it is a parser convenience and never survives
// canonicalization.
var PopSeg = Segment{Kind: SegPop, Value: ".."}

// Valid checks the lexical convention for the segment's kind.
func (s Segment) Valid() bool {
	switch s.Kind {
	case SegRoot, SegFilesystemRoot, SegPop:
		return true
	case SegSpace, SegBase:
		return skewerPattern.MatchString(s.Value)
	case SegVersion:
		return semverPattern.MatchString(s.Value)
	case SegDir, SegFile:
		return filePattern.MatchString(s.Value)
	default:
		return false
	}
}

// String renders the segment's own text, without separators — callers
// join segments according to the rules in point.go.
func (s Segment) String() string {
	switch s.Kind {
	case SegRoot:
		return ""
	case SegFilesystemRoot:
		return "/"
	case SegDir:
		return s.Value + "/"
	case SegPop:
		return ".."
	default:
		return s.Value
	}
}

func (s Segment) Equal(o Segment) bool {
	return s.Kind == o.Kind && s.Value == o.Value
}
