package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/pkg/events"
	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/fabric"
	"github.com/starlane-io/starlane/pkg/log"
	"github.com/starlane-io/starlane/pkg/metrics"
	"github.com/starlane-io/starlane/pkg/registry"
	"github.com/starlane-io/starlane/pkg/router"
	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/security"
	"github.com/starlane-io/starlane/pkg/star"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// inboundHandoff resolves the construction cycle between a Mesh (which
// needs an Inbound at New) and a Star (which needs the Mesh as its
// Transport/Lanes at New): the Mesh is built against this indirection
// first, the Star second, and target is set before either is used —
// the same pattern pkg/client's fabric tests use.
type inboundHandoff struct {
	target *star.Star
}

func (h *inboundHandoff) EnqueueFabric(ctx context.Context, w wave.Wave, injector starid.Surface) {
	h.target.EnqueueFabric(ctx, w, injector)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start this Star",
	Long: `run starts a single Star process: it opens (or loads) the mesh's
certificate material, binds a fabric listener other stars dial into,
optionally joins the replicated registry quorum, and blocks servicing
waves until interrupted.`,
	RunE: runStar,
}

func init() {
	runCmd.Flags().String("config", "", "YAML file providing any of this command's flags; explicit flags always win")
	runCmd.Flags().String("star-key", "", "This star's unique key in the mesh (required)")
	runCmd.Flags().String("kind", "edge", "This star's kind, used by search floods (e.g. central, edge)")
	runCmd.Flags().String("fabric-addr", "127.0.0.1:7950", "Address the fabric listener binds")
	runCmd.Flags().String("data-dir", "./star-data", "Data directory for registry and CA state")
	runCmd.Flags().String("cert-dir", "", "Certificate directory (defaults to <data-dir>/certs)")
	runCmd.Flags().String("mesh-id", "", "Mesh identifier used to derive the at-rest CA encryption key (required)")
	runCmd.Flags().Bool("bootstrap", false, "Initialize a new mesh CA and a single-voter registry quorum rooted here")
	runCmd.Flags().Bool("central", false, "Hold a seat in the replicated registry quorum")
	runCmd.Flags().String("registry-bind-addr", "127.0.0.1:7951", "Address for registry Raft communication, when --central")
	runCmd.Flags().StringSlice("registry-peers", nil, "key=addr pairs for every initial registry voter, when --bootstrap --central with more than one seat")
	runCmd.Flags().StringSlice("neighbor", nil, "key=addr pairs of neighbour stars to dial on startup")
	runCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for the metrics/health HTTP endpoint")
	runCmd.Flags().Bool("enable-pprof", false, "Enable pprof profiling endpoints on the metrics server")
	runCmd.Flags().Float64("admission-rps", 0, "Per-origin-point admission rate limit, in waves/sec (0 disables)")
	runCmd.Flags().Int("admission-burst", 20, "Per-origin-point admission burst size, when --admission-rps > 0")
}

func runStar(cmd *cobra.Command, _ []string) error {
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		f, err := loadStarFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load --config: %w", err)
		}
		applyStarFile(cmd, f)
	}

	starKey, _ := cmd.Flags().GetString("star-key")
	kindStr, _ := cmd.Flags().GetString("kind")
	fabricAddr, _ := cmd.Flags().GetString("fabric-addr")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	certDir, _ := cmd.Flags().GetString("cert-dir")
	meshID, _ := cmd.Flags().GetString("mesh-id")
	bootstrap, _ := cmd.Flags().GetBool("bootstrap")
	central, _ := cmd.Flags().GetBool("central")
	registryBindAddr, _ := cmd.Flags().GetString("registry-bind-addr")
	registryPeers, _ := cmd.Flags().GetStringSlice("registry-peers")
	neighbors, _ := cmd.Flags().GetStringSlice("neighbor")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	pprofEnabled, _ := cmd.Flags().GetBool("enable-pprof")
	admissionRPS, _ := cmd.Flags().GetFloat64("admission-rps")
	admissionBurst, _ := cmd.Flags().GetInt("admission-burst")

	if starKey == "" {
		return fmt.Errorf("--star-key is required")
	}
	if meshID == "" {
		return fmt.Errorf("--mesh-id is required")
	}
	if certDir == "" {
		certDir = dataDir + "/certs"
	}

	runLog := log.WithComponent("cmd-star").With().Str("star_key", starKey).Logger()

	if err := security.SetMeshEncryptionKey(security.DeriveKeyFromMeshID(meshID)); err != nil {
		return fmt.Errorf("failed to set mesh encryption key: %w", err)
	}

	if err := ensureCertMaterial(dataDir, certDir, starKey, bootstrap); err != nil {
		return fmt.Errorf("failed to prepare certificate material: %w", err)
	}
	fmt.Printf("✓ Certificate material ready in %s\n", certDir)

	var reg registry.Registry
	if central {
		rep, err := registry.NewReplicated(registry.ReplicatedConfig{
			StarKey:  starKey,
			BindAddr: registryBindAddr,
			DataDir:  dataDir + "/registry",
		})
		if err != nil {
			return fmt.Errorf("failed to open registry store: %w", err)
		}
		if bootstrap {
			if len(registryPeers) > 0 {
				peers, err := parseKeyAddrPairs(registryPeers)
				if err != nil {
					return fmt.Errorf("invalid --registry-peers: %w", err)
				}
				peers[starKey] = registryBindAddr
				if err := rep.BootstrapPeers(peers); err != nil {
					return fmt.Errorf("failed to bootstrap registry quorum: %w", err)
				}
			} else {
				if err := rep.Bootstrap(); err != nil {
					return fmt.Errorf("failed to bootstrap registry quorum: %w", err)
				}
			}
			fmt.Println("✓ Registry quorum bootstrapped")
		}
		reg = rep
	} else {
		reg = registry.NewLocal()
	}

	kind := search.StarKind(kindStr)
	gate := registry.HostGate{Registry: reg, StarKey: starKey}
	drivers := router.NewDriverRegistry(gate)

	// mesh needs an Inbound (the Star) at construction, and Star needs
	// the Mesh as its Transport/Lanes at construction — handoff breaks
	// the cycle exactly the way pkg/client's fabric tests do.
	handoff := &inboundHandoff{}
	mesh := fabric.New(fabric.Config{Self: search.StarKey(starKey), CertDir: certDir, Inbound: handoff})

	s := star.New(star.Config{
		Key:            search.StarKey(starKey),
		Kind:           kind,
		Registry:       gate,
		Drivers:        drivers,
		Lanes:          mesh,
		Transport:      mesh,
		Exchange:       exchange.DefaultTimeouts,
		AdmissionRPS:   admissionRPS,
		AdmissionBurst: admissionBurst,
	})
	handoff.target = s
	mesh.BindSearcher(s.Search)

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	collector := metrics.NewCollector(asReplicated(reg), s.Wrangle, mesh)
	collector.Start()
	defer collector.Stop()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("raft", !central || bootstrap, "starting")
	metrics.RegisterComponent("fabric", false, "initializing")
	metrics.RegisterComponent("api", false, "initializing")

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if pprofEnabled {
			mux.Handle("/debug/pprof/", http.DefaultServeMux)
		}
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			runLog.Error().Err(err).Msg("metrics server error")
		}
	}()
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", metricsAddr)
	fmt.Printf("✓ Health endpoints: http://%s/{health,ready,live}\n", metricsAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := mesh.Listen(fabricAddr); err != nil {
			errCh <- fmt.Errorf("fabric listener error: %w", err)
		}
	}()
	time.Sleep(200 * time.Millisecond)
	metrics.RegisterComponent("fabric", true, "listening on "+mesh.Addr())
	metrics.RegisterComponent("api", true, "ready")
	fmt.Printf("✓ Fabric listening on %s\n", mesh.Addr())

	peers, err := parseKeyAddrPairs(neighbors)
	if err != nil {
		return fmt.Errorf("invalid --neighbor: %w", err)
	}
	for key, addr := range peers {
		if err := mesh.Dial(ctx, search.StarKey(key), addr); err != nil {
			runLog.Warn().Err(err).Str("peer", key).Msg("failed to dial neighbour star")
			continue
		}
		fmt.Printf("✓ Dialed neighbour %s at %s\n", key, addr)
	}

	fmt.Println()
	fmt.Println("Star is running. Press Ctrl+C to stop.")
	fmt.Printf("Star key: %s   Kind: %s\n", starKey, kind)
	fmt.Println()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}

	s.Stop()
	cancel()
	mesh.Close()
	if err := shutdownRegistry(reg); err != nil {
		runLog.Warn().Err(err).Msg("registry shutdown reported an error")
	}

	fmt.Println("✓ Shutdown complete")
	return nil
}

// asReplicated narrows reg to *registry.Replicated for the metrics
// collector, which has nothing meaningful to poll when reg is a
// non-Central *registry.Local — nil is a valid Collector dependency
// (see pkg/metrics/collector.go's nil guards).
func asReplicated(reg registry.Registry) *registry.Replicated {
	rep, _ := reg.(*registry.Replicated)
	return rep
}

// shutdownRegistry releases the registry's Raft/bbolt resources when
// reg holds a replicated seat; a Local registry has nothing to close.
func shutdownRegistry(reg registry.Registry) error {
	rep, ok := reg.(*registry.Replicated)
	if !ok {
		return nil
	}
	return rep.Shutdown()
}

// parseKeyAddrPairs parses a "key=addr" flag slice into a map,
// rejecting malformed entries up front rather than silently dropping
// them.
func parseKeyAddrPairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("expected key=addr, got %q", p)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}

// ensureCertMaterial initializes a fresh mesh CA and this star's own
// node certificate when bootstrap is set and no certificate yet
// exists, or loads previously persisted material otherwise. Joining an
// existing mesh without --bootstrap requires certDir to already hold
// ca.crt/node.crt/node.key — copied from the bootstrap star out of
// band, since no wire operation exists yet to fetch CA material over
// the fabric (see DESIGN.md).
func ensureCertMaterial(dataDir, certDir, starKey string, bootstrap bool) error {
	if security.CertExists(certDir) {
		return nil
	}
	if !bootstrap {
		return fmt.Errorf("no certificate material in %s; run with --bootstrap to initialize a new mesh, or copy ca.crt/node.crt/node.key from an existing star", certDir)
	}

	store := newFileCAStore(dataDir)
	ca := security.NewCertAuthority(store)
	if store.exists() {
		if err := ca.LoadFromStore(); err != nil {
			return fmt.Errorf("failed to load existing CA: %w", err)
		}
	} else {
		if err := ca.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize mesh CA: %w", err)
		}
		if err := ca.SaveToStore(); err != nil {
			return fmt.Errorf("failed to persist mesh CA: %w", err)
		}
	}

	cert, err := ca.IssueNodeCertificate(starKey, "star", []string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1")})
	if err != nil {
		return fmt.Errorf("failed to issue star certificate: %w", err)
	}
	if err := security.SaveCertToFile(cert, certDir); err != nil {
		return fmt.Errorf("failed to save star certificate: %w", err)
	}
	if err := security.SaveCACertToFile(ca.GetRootCACert(), certDir); err != nil {
		return fmt.Errorf("failed to save mesh CA certificate: %w", err)
	}
	return nil
}
