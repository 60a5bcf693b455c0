package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/raft"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
)

// fsm implements raft.FSM for the replicated registry, applying
// assign/set_status/set_properties commands to a RecordStore (reads
// such as Locate go to the store directly, not through the log) —
// the same shape as the teacher's WarrenFSM over storage.Store.
type fsm struct {
	mu    sync.RWMutex
	store RecordStore
}

func newFSM(store RecordStore) *fsm {
	return &fsm{store: store}
}

// command is the Raft log entry payload; Op selects which registry
// mutation to apply.
type command struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

const (
	opAssign        = "assign"
	opSetStatus     = "set_status"
	opSetProperties = "set_properties"
)

type assignPayload struct {
	Point string `json:"point"`
	Base  string `json:"base"`
	Sub   string `json:"sub,omitempty"`
	Star  string `json:"star"`
}

type setStatusPayload struct {
	Point  string `json:"point"`
	Status int    `json:"status"`
}

type setPropertiesPayload struct {
	Point string            `json:"point"`
	Props map[string]string `json:"props"`
}

func (f *fsm) Apply(log *raft.Log) interface{} {
	var cmd command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal registry command: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Op {
	case opAssign:
		var p assignPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		point, err := starid.ParsePoint(p.Point)
		if err != nil {
			return err
		}
		base, err := starid.ParseBaseKind(p.Base)
		if err != nil {
			return err
		}
		kind := starid.NewKind(base)
		if p.Sub != "" {
			kind = kind.WithSub(starid.SubKind(p.Sub))
		}

		existing, err := f.store.Get(point.Hash())
		if err == nil {
			if existing.Owner == p.Star {
				return nil
			}
			return starerr.Conflict("particle " + p.Point + " already assigned to " + existing.Owner)
		}
		return f.store.Put(Record{Point: point, Kind: kind, Owner: p.Star, Status: StatusAssigning, Properties: map[string]string{}})

	case opSetStatus:
		var p setStatusPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		rec, err := f.store.Get(hashOf(p.Point))
		if err != nil {
			return err
		}
		rec.Status = Status(p.Status)
		return f.store.Put(rec)

	case opSetProperties:
		var p setPropertiesPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return err
		}
		rec, err := f.store.Get(hashOf(p.Point))
		if err != nil {
			return err
		}
		if rec.Properties == nil {
			rec.Properties = map[string]string{}
		}
		for k, v := range p.Props {
			rec.Properties[k] = v
		}
		return f.store.Put(rec)

	default:
		return fmt.Errorf("unknown registry command: %s", cmd.Op)
	}
}

func hashOf(pointStr string) string {
	point, err := starid.ParsePoint(pointStr)
	if err != nil {
		return pointStr
	}
	return point.Hash()
}

func (f *fsm) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	recs, err := f.store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	blobs := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		blob, err := marshalRecord(rec)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
	}
	return &snapshot{Records: blobs}, nil
}

func (f *fsm) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snap snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode registry snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, blob := range snap.Records {
		rec, err := unmarshalRecord(blob)
		if err != nil {
			return fmt.Errorf("failed to decode restored record: %w", err)
		}
		if err := f.store.Put(rec); err != nil {
			return fmt.Errorf("failed to restore record: %w", err)
		}
	}
	return nil
}

type snapshot struct {
	Records []json.RawMessage
}

func (s *snapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

func (s *snapshot) Release() {}
