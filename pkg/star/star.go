// Package star assembles one Star process: the traversal engine, the
// exchanger, the search actor, the wrangler table, a registry handle,
// and a driver registry, unified under the single event loop described
// by §5's concurrency model. The teacher split this across
// manager.Manager (cluster state, Raft) and worker.Worker (container
// execution); Starlane does not distinguish the two roles, so both
// collapse into this one process type.
package star

import (
	"github.com/rs/zerolog"

	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/log"
	"github.com/starlane-io/starlane/pkg/registry"
	"github.com/starlane-io/starlane/pkg/router"
	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/traversal"
	"github.com/starlane-io/starlane/pkg/wave"
	"github.com/starlane-io/starlane/pkg/wrangler"
)

// Registry is the slice of pkg/registry.Registry the Star holds
// directly: the narrow traversal-facing contract (HostedHere/KindOf,
// handed to the engine via a HostGate), plus Locate and Access, which
// the Field layer consults directly for bind-config loading and
// permission checks.
type Registry interface {
	traversal.Registry
	traversal.KindLookup

	Locate(point starid.Point) (registry.Record, error)
	Access(agent wave.Agent, point starid.Point) (registry.Access, error)
}

// Config wires every collaborator a Star needs. Star never constructs
// these itself — pkg/fabric, pkg/registry, and cmd/star own that.
type Config struct {
	Key       search.StarKey
	Kind      search.StarKind
	Registry  Registry
	Drivers   *router.DriverRegistry
	Lanes     search.LaneRouter
	Transport router.Transport
	Exchange  exchange.Timeouts

	// AdmissionRPS and AdmissionBurst configure the per-origin-point
	// token bucket the Field layer applies to incoming waves.
	// AdmissionRPS <= 0 disables admission control entirely.
	AdmissionRPS   float64
	AdmissionBurst int
}

// Star is one mesh participant: everything spec §4.11 describes a
// process owning.
type Star struct {
	Key     search.StarKey
	Kind    search.StarKind
	Engine  *traversal.Engine
	Exch    *exchange.Exchanger
	Search  *search.Searcher
	Wrangle *wrangler.Table
	Drivers *router.DriverRegistry
	Gravity *router.GravityRouter
	Fabric  *router.FabricRouter

	registry Registry
	admit    *admission
	shell    *shell
	queues   *queues
	log      zerolog.Logger
}

// New assembles a Star from cfg. It does not start the event loop;
// call Run for that.
func New(cfg Config) *Star {
	exch := exchange.NewExchanger(cfg.Exchange)
	searcher := search.NewSearcher(cfg.Key, cfg.Kind, cfg.Lanes, search.DefaultTimeout)

	fabric := router.NewFabricRouter(cfg.Transport, exch)
	engine := traversal.NewEngine(cfg.Registry, cfg.Registry, cfg.Drivers, fabric)

	// The star's own injector identity: a synthetic point distinct from
	// any hosted particle, matching traversal's "star-originated" case
	// (resolve()'s case 4) rather than colliding with case 3's
	// "sending particle is its own injector" shuttle.
	self := starid.NewSurface(starid.RootPoint(starid.StarRoute(string(cfg.Key))), starid.LayerCore, starid.NoTopic)
	gravity := router.NewGravityRouter(engine, exch, self)

	s := &Star{
		Key:      cfg.Key,
		Kind:     cfg.Kind,
		Engine:   engine,
		Exch:     exch,
		Search:   searcher,
		Wrangle:  wrangler.NewTable(),
		Drivers:  cfg.Drivers,
		Gravity:  gravity,
		Fabric:   fabric,
		registry: cfg.Registry,
		admit:    newAdmission(cfg.AdmissionRPS, cfg.AdmissionBurst),
		shell:    newShell(),
		queues:   newQueues(),
		log:      log.WithComponent("star").With().Str("star_key", string(cfg.Key)).Logger(),
	}

	engine.RegisterLayer(starid.LayerField, s.fieldHandler())
	engine.RegisterLayer(starid.LayerShell, s.shell.handler())
	return s
}
