package registry

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/starid"
)

// memSink is an in-memory raft.SnapshotSink for exercising Persist/Restore
// without a real raft.SnapshotStore.
type memSink struct {
	bytes.Buffer
}

func newMemSink() *memSink { return &memSink{} }

func (s *memSink) ID() string      { return "test-snapshot" }
func (s *memSink) Cancel() error   { return nil }
func (s *memSink) Close() error    { return nil }
func (s *memSink) asReadCloser() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(s.Bytes()))
}

func newTestStore(t *testing.T) *BoltRecordStore {
	t.Helper()
	store, err := NewBoltRecordStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func applyCmd(t *testing.T, f *fsm, op string, payload interface{}) interface{} {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	cmdData, err := json.Marshal(command{Op: op, Data: data})
	require.NoError(t, err)
	return f.Apply(&raft.Log{Data: cmdData})
}

func TestFSMAssignThenLocate(t *testing.T) {
	store := newTestStore(t)
	f := newFSM(store)

	resp := applyCmd(t, f, opAssign, assignPayload{Point: "my-space:app", Base: "App", Star: "star-a"})
	assert.Nil(t, resp)

	rec, err := store.Get(mustPoint(t, "my-space:app").Hash())
	require.NoError(t, err)
	assert.Equal(t, "star-a", rec.Owner)
	assert.Equal(t, starid.KindApp, rec.Kind.Base())
	assert.Equal(t, StatusAssigning, rec.Status)
}

func TestFSMAssignConflictReturnsError(t *testing.T) {
	store := newTestStore(t)
	f := newFSM(store)

	applyCmd(t, f, opAssign, assignPayload{Point: "my-space:app", Base: "App", Star: "star-a"})
	resp := applyCmd(t, f, opAssign, assignPayload{Point: "my-space:app", Base: "App", Star: "star-b"})

	err, ok := resp.(error)
	require.True(t, ok, "expected assign conflict to surface as an error response")
	assert.Error(t, err)
}

func TestFSMSetStatusAndProperties(t *testing.T) {
	store := newTestStore(t)
	f := newFSM(store)

	applyCmd(t, f, opAssign, assignPayload{Point: "my-space:app", Base: "App", Star: "star-a"})
	resp := applyCmd(t, f, opSetStatus, setStatusPayload{Point: "my-space:app", Status: int(StatusReady)})
	assert.Nil(t, resp)

	resp = applyCmd(t, f, opSetProperties, setPropertiesPayload{Point: "my-space:app", Props: map[string]string{"region": "us-west"}})
	assert.Nil(t, resp)

	rec, err := store.Get(mustPoint(t, "my-space:app").Hash())
	require.NoError(t, err)
	assert.Equal(t, StatusReady, rec.Status)
	assert.Equal(t, "us-west", rec.Properties["region"])
}

func TestFSMUnknownCommandReturnsError(t *testing.T) {
	store := newTestStore(t)
	f := newFSM(store)

	resp := applyCmd(t, f, "not_a_real_op", map[string]string{})
	_, ok := resp.(error)
	assert.True(t, ok)
}

func TestFSMSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	f := newFSM(store)

	applyCmd(t, f, opAssign, assignPayload{Point: "my-space:app", Base: "App", Star: "star-a"})
	applyCmd(t, f, opAssign, assignPayload{Point: "my-space:other", Base: "Space", Star: "star-b"})

	snap, err := f.Snapshot()
	require.NoError(t, err)

	sink := newMemSink()
	require.NoError(t, snap.Persist(sink))

	restoreStore := newTestStore(t)
	restoreFSM := newFSM(restoreStore)
	require.NoError(t, restoreFSM.Restore(sink.asReadCloser()))

	rec, err := restoreStore.Get(mustPoint(t, "my-space:app").Hash())
	require.NoError(t, err)
	assert.Equal(t, "star-a", rec.Owner)

	rec, err = restoreStore.Get(mustPoint(t, "my-space:other").Hash())
	require.NoError(t, err)
	assert.Equal(t, "star-b", rec.Owner)
}

func TestBoltRecordStorePutGetListDelete(t *testing.T) {
	store := newTestStore(t)
	point := mustPoint(t, "my-space:app")
	rec := Record{Point: point, Kind: starid.NewKind(starid.KindApp), Owner: "star-a", Status: StatusReady, Properties: map[string]string{"k": "v"}}

	require.NoError(t, store.Put(rec))

	got, err := store.Get(point.Hash())
	require.NoError(t, err)
	assert.Equal(t, "star-a", got.Owner)
	assert.Equal(t, "v", got.Properties["k"])

	all, err := store.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.Delete(point.Hash()))
	_, err = store.Get(point.Hash())
	assert.Error(t, err)
}
