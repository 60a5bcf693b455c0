package starid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starlane-io/starlane/pkg/starerr"
)

var (
	vendorDomainPattern = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9]+)+$`)
)

// Specific is a vendor:product:variant:semver tuple identifying exactly
// which implementation a particle's kind carries.
type Specific struct {
	Vendor  string // a reverse-domain, e.g. "acme.com"
	Product string // skewer-case
	Variant string // skewer-case
	Version string // semver
}

func (s Specific) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", s.Vendor, s.Product, s.Variant, s.Version)
}

func (s Specific) Valid() bool {
	return vendorDomainPattern.MatchString(s.Vendor) &&
		skewerPattern.MatchString(s.Product) &&
		skewerPattern.MatchString(s.Variant) &&
		semverPattern.MatchString(s.Version)
}

func (s Specific) Equal(o Specific) bool {
	return s.Vendor == o.Vendor && s.Product == o.Product && s.Variant == o.Variant && s.Version == o.Version
}

// ParseSpecific parses "vendor.domain:product:variant:semver".
func ParseSpecific(input string) (Specific, error) {
	parts := strings.Split(input, ":")
	if len(parts) != 4 {
		return Specific{}, starerr.NewParse(input, "specific requires 4 ':'-separated fields", 0, 1, 1)
	}
	s := Specific{Vendor: parts[0], Product: parts[1], Variant: parts[2], Version: parts[3]}
	if !s.Valid() {
		return Specific{}, starerr.NewParse(input, "specific failed lexical validation", 0, 1, 1)
	}
	return s, nil
}

// PatternElem is a single matchable field in a SpecificPattern: either
// Any (matches everything) or Exact(v) (matches only v).
type PatternElem struct {
	Any   bool
	Exact string
}

// AnyElem matches any value.
var AnyElem = PatternElem{Any: true}

// ExactElem matches only v.
func ExactElem(v string) PatternElem { return PatternElem{Exact: v} }

func (e PatternElem) Matches(v string) bool {
	if e.Any {
		return true
	}
	return e.Exact == v
}

func (e PatternElem) String() string {
	if e.Any {
		return "*"
	}
	return e.Exact
}

// SpecificPattern matches a Specific field-by-field; vendor/product/
// variant may be Any or Exact, version is a minimum-semver requirement
// (empty matches any version).
type SpecificPattern struct {
	Vendor  PatternElem
	Product PatternElem
	Variant PatternElem
	Version string // minimum semver, "" = any
}

func (p SpecificPattern) Matches(s Specific) bool {
	if !p.Vendor.Matches(s.Vendor) || !p.Product.Matches(s.Product) || !p.Variant.Matches(s.Variant) {
		return false
	}
	if p.Version == "" {
		return true
	}
	return semverGTE(s.Version, p.Version)
}

// semverGTE does a simple major.minor.patch comparison, ignoring
// pre-release/build metadata; sufficient for the mesh's kind matching,
// which never needs pre-release ordering.
func semverGTE(have, want string) bool {
	hp := strings.SplitN(strings.SplitN(have, "-", 2)[0], ".", 3)
	wp := strings.SplitN(strings.SplitN(want, "-", 2)[0], ".", 3)
	for i := 0; i < 3; i++ {
		var h, w int
		if i < len(hp) {
			fmt.Sscanf(hp[i], "%d", &h)
		}
		if i < len(wp) {
			fmt.Sscanf(wp[i], "%d", &w)
		}
		if h != w {
			return h > w
		}
	}
	return true
}
