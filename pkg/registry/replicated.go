package registry

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Replicated backs a Central quorum: reads come from the local
// RecordStore, writes go through raft.Apply so assign/set_status/
// set_properties are linearizable across the constellation, exactly
// as the teacher's Manager drives WarrenFSM over a raft group.
type Replicated struct {
	starKey  string
	bindAddr string
	dataDir  string

	raft  *raft.Raft
	fsm   *fsm
	store RecordStore
}

// ReplicatedConfig configures a new Central registry node.
type ReplicatedConfig struct {
	StarKey  string
	BindAddr string
	DataDir  string
}

// NewReplicated opens the local bbolt store and wires an FSM, without
// starting Raft; call Bootstrap or Join to join a cluster.
func NewReplicated(cfg ReplicatedConfig) (*Replicated, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry data directory: %w", err)
	}

	store, err := NewBoltRecordStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry store: %w", err)
	}

	return &Replicated{
		starKey:  cfg.StarKey,
		bindAddr: cfg.BindAddr,
		dataDir:  cfg.DataDir,
		fsm:      newFSM(store),
		store:    store,
	}, nil
}

// start opens the Raft transport, log/stable/snapshot stores, and the
// raft.Raft instance itself, without forming or joining any
// configuration — the common setup Bootstrap and BootstrapPeers both
// need before they decide what configuration to seed.
func (r *Replicated) start() (*raft.TCPTransport, error) {
	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(r.starKey)
	config.HeartbeatTimeout = 500 * time.Millisecond
	config.ElectionTimeout = 500 * time.Millisecond
	config.CommitTimeout = 50 * time.Millisecond
	config.LeaderLeaseTimeout = 250 * time.Millisecond

	addr, err := net.ResolveTCPAddr("tcp", r.bindAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve registry bind address: %w", err)
	}
	transport, err := raft.NewTCPTransport(r.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry raft transport: %w", err)
	}
	snapshotStore, err := raft.NewFileSnapshotStore(r.dataDir, 2, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry snapshot store: %w", err)
	}
	logStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "registry-raft-log.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create registry raft log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "registry-raft-stable.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create registry raft stable store: %w", err)
	}

	ra, err := raft.NewRaft(config, r.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry raft instance: %w", err)
	}
	r.raft = ra
	return transport, nil
}

// Bootstrap forms a new single-node Raft cluster rooted at this node,
// with the teacher's fast-failover tuning (sub-second heartbeat and
// election timeouts, tuned for LAN/edge Central deployments).
func (r *Replicated) Bootstrap() error {
	transport, err := r.start()
	if err != nil {
		return err
	}
	configuration := raft.Configuration{
		Servers: []raft.Server{{ID: raft.ServerID(r.starKey), Address: transport.LocalAddr()}},
	}
	return r.raft.BootstrapCluster(configuration).Error()
}

// BootstrapPeers forms a new Raft cluster with a full voter list known
// up front, for a Constellation whose initial Central seats are all
// started together rather than grown one AddVoter call at a time.
// peers maps each voter's star key to its registry bind address and
// must include this node's own entry.
func (r *Replicated) BootstrapPeers(peers map[string]string) error {
	transport, err := r.start()
	if err != nil {
		return err
	}
	servers := make([]raft.Server, 0, len(peers))
	for key, addr := range peers {
		servers = append(servers, raft.Server{ID: raft.ServerID(key), Address: raft.ServerAddress(addr)})
	}
	configuration := raft.Configuration{Servers: servers}
	return r.raft.BootstrapCluster(configuration).Error()
}

// AddVoter adds a peer star to the registry's Raft group; only the
// leader may call this.
func (r *Replicated) AddVoter(starKey, addr string) error {
	if r.raft == nil {
		return fmt.Errorf("registry raft not initialized")
	}
	if r.raft.State() != raft.Leader {
		return fmt.Errorf("not the registry leader, current leader: %s", r.raft.Leader())
	}
	return r.raft.AddVoter(raft.ServerID(starKey), raft.ServerAddress(addr), 0, 10*time.Second).Error()
}

// IsLeader reports whether this star currently holds the registry's
// Raft leadership.
func (r *Replicated) IsLeader() bool {
	return r.raft != nil && r.raft.State() == raft.Leader
}

// Records returns every Point record known to this registry node, for
// diagnostics and metrics collection — reads straight from the local
// store, bypassing Raft, the same way ListChildren does.
func (r *Replicated) Records() ([]Record, error) {
	return r.store.List()
}

// Stats exposes a handful of Raft diagnostics for metrics collection,
// mirroring the teacher's manager.GetRaftStats.
func (r *Replicated) Stats() map[string]string {
	if r.raft == nil {
		return nil
	}
	return r.raft.Stats()
}

func (r *Replicated) apply(cmd command) error {
	if r.raft == nil {
		return fmt.Errorf("registry raft not initialized")
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal registry command: %w", err)
	}
	future := r.raft.Apply(data, 5*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to apply registry command: %w", err)
	}
	if resp := future.Response(); resp != nil {
		if err, ok := resp.(error); ok && err != nil {
			return err
		}
	}
	return nil
}

func (r *Replicated) Locate(point starid.Point) (Record, error) {
	return r.store.Get(point.Hash())
}

func (r *Replicated) Assign(point starid.Point, kind starid.Kind, star string) error {
	payload := assignPayload{Point: point.String(), Base: kind.Base().String(), Star: star}
	if sub, ok := kind.Sub(); ok {
		payload.Sub = string(sub)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.apply(command{Op: opAssign, Data: data})
}

func (r *Replicated) Access(agent wave.Agent, point starid.Point) (Access, error) {
	rec, err := r.Locate(point)
	if err != nil {
		return Access{}, err
	}
	switch agent.Kind {
	case wave.AgentHyperUser:
		return FullAccess, nil
	case wave.AgentPoint:
		if agent.Point == rec.Point.String() {
			return FullAccess, nil
		}
		return Access{Read: true, Write: true}, nil
	default:
		return Access{Read: true, DeniedReason: "anonymous agents may only read"}, nil
	}
}

func (r *Replicated) SetStatus(point starid.Point, status Status) error {
	data, err := json.Marshal(setStatusPayload{Point: point.String(), Status: int(status)})
	if err != nil {
		return err
	}
	return r.apply(command{Op: opSetStatus, Data: data})
}

func (r *Replicated) SetProperties(point starid.Point, props map[string]string) error {
	data, err := json.Marshal(setPropertiesPayload{Point: point.String(), Props: props})
	if err != nil {
		return err
	}
	return r.apply(command{Op: opSetProperties, Data: data})
}

func (r *Replicated) ListChildren(parent starid.Point, selector *starid.KindSelector) ([]Record, error) {
	all, err := r.store.List()
	if err != nil {
		return nil, err
	}
	var children []Record
	for _, rec := range all {
		segs, err := rec.Point.RelativeSegs(parent)
		if err != nil || len(segs) != 1 {
			continue
		}
		if selector != nil && !selector.IsMatch(rec.Kind) {
			continue
		}
		children = append(children, rec)
	}
	return children, nil
}

// Shutdown stops Raft and closes the backing store.
func (r *Replicated) Shutdown() error {
	if r.raft != nil {
		if err := r.raft.Shutdown().Error(); err != nil {
			return fmt.Errorf("failed to shut down registry raft: %w", err)
		}
	}
	return r.store.Close()
}

var _ Registry = (*Replicated)(nil)
var _ Registry = (*Local)(nil)
