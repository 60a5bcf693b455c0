package registry

import (
	"github.com/starlane-io/starlane/pkg/starid"
)

// Status tracks a particle's lifecycle within the registry, set by its
// driver or by the wrangler during assignment/migration.
type Status int

const (
	StatusPending Status = iota
	StatusAssigning
	StatusReady
	StatusSuspended
	StatusTerminating
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusAssigning:
		return "Assigning"
	case StatusReady:
		return "Ready"
	case StatusSuspended:
		return "Suspended"
	case StatusTerminating:
		return "Terminating"
	case StatusTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Record is the authoritative entry the registry holds for one point:
// its kind, the star that currently owns it, its lifecycle status, and
// a free-form property bag (spec §4.5's "straightforward CRUD").
type Record struct {
	Point      starid.Point
	Kind       starid.Kind
	Owner      string // star key
	Status     Status
	Properties map[string]string
}

func (r Record) clone() Record {
	props := make(map[string]string, len(r.Properties))
	for k, v := range r.Properties {
		props[k] = v
	}
	r.Properties = props
	return r
}
