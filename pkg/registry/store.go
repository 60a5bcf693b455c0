package registry

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
)

// RecordStore is the durable backing store a Replicated registry's FSM
// applies committed commands to, mirroring the teacher's storage.Store
// split between the Raft FSM and its persistence layer.
type RecordStore interface {
	Put(rec Record) error
	Get(pointHash string) (Record, error)
	List() ([]Record, error)
	Delete(pointHash string) error
	Close() error
}

// recordWire is Record's JSON-serializable shape: Point and Kind carry
// unexported fields, so they're flattened to their canonical strings
// the same way pkg/wave/codec.go flattens Surface for the wire.
type recordWire struct {
	Point      string            `json:"point"`
	Base       string            `json:"base"`
	Sub        string            `json:"sub"`
	Specific   string            `json:"specific,omitempty"`
	Owner      string            `json:"owner"`
	Status     int               `json:"status"`
	Properties map[string]string `json:"properties"`
}

func marshalRecord(rec Record) ([]byte, error) {
	w := recordWire{
		Point:      rec.Point.String(),
		Base:       rec.Kind.Base().String(),
		Owner:      rec.Owner,
		Status:     int(rec.Status),
		Properties: rec.Properties,
	}
	if sub, ok := rec.Kind.Sub(); ok {
		w.Sub = string(sub)
	}
	if s, ok := rec.Kind.Specific(); ok {
		w.Specific = s.String()
	}
	return json.Marshal(w)
}

func unmarshalRecord(data []byte) (Record, error) {
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, err
	}

	point, err := starid.ParsePoint(w.Point)
	if err != nil {
		return Record{}, fmt.Errorf("record point %q: %w", w.Point, err)
	}
	base, err := starid.ParseBaseKind(w.Base)
	if err != nil {
		return Record{}, fmt.Errorf("record base kind %q: %w", w.Base, err)
	}
	kind := starid.NewKind(base)
	if w.Sub != "" {
		kind = kind.WithSub(starid.SubKind(w.Sub))
	}
	if w.Specific != "" {
		specific, err := starid.ParseSpecific(w.Specific)
		if err != nil {
			return Record{}, fmt.Errorf("record specific %q: %w", w.Specific, err)
		}
		kind = kind.WithSpecific(specific)
	}

	return Record{
		Point:      point,
		Kind:       kind,
		Owner:      w.Owner,
		Status:     Status(w.Status),
		Properties: w.Properties,
	}, nil
}

var bucketRecords = []byte("records")

// BoltRecordStore persists records in a bbolt file, one JSON blob per
// key, following the teacher's storage.BoltStore convention exactly.
type BoltRecordStore struct {
	db *bolt.DB
}

// NewBoltRecordStore opens (creating if absent) a bbolt-backed record
// store under dataDir.
func NewBoltRecordStore(dataDir string) (*BoltRecordStore, error) {
	path := filepath.Join(dataDir, "registry.db")
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRecordStore{db: db}, nil
}

func (s *BoltRecordStore) Put(rec Record) error {
	data, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecords).Put([]byte(rec.Point.Hash()), data)
	})
}

func (s *BoltRecordStore) Get(pointHash string) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(pointHash))
		if data == nil {
			return starerr.NotFound("registry record " + pointHash)
		}
		r, err := unmarshalRecord(data)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	return rec, err
}

func (s *BoltRecordStore) List() ([]Record, error) {
	var recs []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			rec, err := unmarshalRecord(v)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})
	return recs, err
}

func (s *BoltRecordStore) Delete(pointHash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecords).Delete([]byte(pointHash))
	})
}

func (s *BoltRecordStore) Close() error {
	return s.db.Close()
}
