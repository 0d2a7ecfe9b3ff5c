// Package cache persists a stream's derived index (tells, residuals,
// explicit-flags) so a caller can skip re-running the full-file sweep
// on a file it has already indexed. The index is pure derived state,
// safe to rebuild from the file at any time, backed by an embedded
// cockroachdb/pebble store.
package cache

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/rp66v1/dlis/internal/dlerrors"
)

const op = "cache"

// Store is a pebble-backed cache of stream indexes keyed by a
// caller-supplied file fingerprint (typically a content hash or
// path+modtime digest; internal/cache does not compute one itself).
type Store struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a pebble store rooted at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, dlerrors.Wrap(dlerrors.KindIOError, op, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pebble handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot is the persisted form of a stream's index.
type Snapshot struct {
	ID        ksuid.KSUID
	Tells     []uint64
	Residuals []uint64
	Explicit  []bool
}

// Save persists the given index under fingerprint, overwriting
// whatever snapshot was previously stored for it.
func (s *Store) Save(fingerprint string, tells, residuals []uint64, explicit []bool) error {
	if len(tells) != len(residuals) || len(tells) != len(explicit) {
		return dlerrors.New(dlerrors.KindInvalidArgument, op, "tells/residuals/explicit length mismatch")
	}
	snap := Snapshot{ID: ksuid.New(), Tells: tells, Residuals: residuals, Explicit: explicit}
	data := encodeSnapshot(snap)
	if err := s.db.Set([]byte(fingerprint), data, pebble.NoSync); err != nil {
		return dlerrors.Wrap(dlerrors.KindIOError, op, err)
	}
	return nil
}

// Load retrieves the snapshot stored under fingerprint. ok is false
// if nothing has been cached for that fingerprint yet.
func (s *Store) Load(fingerprint string) (Snapshot, bool, error) {
	data, closer, err := s.db.Get([]byte(fingerprint))
	if err == pebble.ErrNotFound {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, dlerrors.Wrap(dlerrors.KindIOError, op, err)
	}
	defer closer.Close()

	snap, err := decodeSnapshot(data)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// Delete evicts the snapshot stored under fingerprint, if any.
func (s *Store) Delete(fingerprint string) error {
	if err := s.db.Delete([]byte(fingerprint), pebble.NoSync); err != nil {
		return dlerrors.Wrap(dlerrors.KindIOError, op, err)
	}
	return nil
}

// encodeSnapshot lays out a Snapshot as: ksuid (20 bytes), record
// count (uvarint), then tells/residuals (uvarint each) and explicit
// (one byte each), field-major so the two uint arrays compress well.
func encodeSnapshot(snap Snapshot) []byte {
	buf := make([]byte, 0, 20+8+len(snap.Tells)*10+len(snap.Residuals)*10+len(snap.Explicit))
	buf = append(buf, snap.ID.Bytes()...)
	buf = appendUvarint(buf, uint64(len(snap.Tells)))
	for _, t := range snap.Tells {
		buf = appendUvarint(buf, t)
	}
	for _, r := range snap.Residuals {
		buf = appendUvarint(buf, r)
	}
	for _, e := range snap.Explicit {
		if e {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	if len(data) < ksuid.ByteLength {
		return Snapshot{}, dlerrors.New(dlerrors.KindTruncated, op, "cached snapshot shorter than a ksuid")
	}
	id, err := ksuid.FromBytes(data[:ksuid.ByteLength])
	if err != nil {
		return Snapshot{}, dlerrors.Wrap(dlerrors.KindInconsistent, op, err)
	}
	rest := data[ksuid.ByteLength:]

	n, rest, err := readUvarint(rest)
	if err != nil {
		return Snapshot{}, err
	}

	tells := make([]uint64, n)
	for i := range tells {
		tells[i], rest, err = readUvarint(rest)
		if err != nil {
			return Snapshot{}, err
		}
	}
	residuals := make([]uint64, n)
	for i := range residuals {
		residuals[i], rest, err = readUvarint(rest)
		if err != nil {
			return Snapshot{}, err
		}
	}
	if uint64(len(rest)) < n {
		return Snapshot{}, dlerrors.New(dlerrors.KindTruncated, op, "cached snapshot missing explicit flags")
	}
	explicit := make([]bool, n)
	for i := range explicit {
		explicit[i] = rest[i] != 0
	}

	return Snapshot{ID: id, Tells: tells, Residuals: residuals, Explicit: explicit}, nil
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func readUvarint(data []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, dlerrors.New(dlerrors.KindTruncated, op, "cached snapshot: malformed varint")
	}
	return v, data[n:], nil
}
