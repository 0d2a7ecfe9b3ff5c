// Package dlis is the public facade gluing the wire, physical, index,
// record, and eflr packages into a single library surface: open a
// file, build or reload its index, reassemble logical records, and
// parse the object sets they carry.
package dlis

import (
	"time"

	"go.uber.org/zap"

	"github.com/rp66v1/dlis/internal/bytesource"
	"github.com/rp66v1/dlis/internal/cache"
	"github.com/rp66v1/dlis/internal/dlerrors"
	"github.com/rp66v1/dlis/internal/eflr"
	"github.com/rp66v1/dlis/internal/index"
	"github.com/rp66v1/dlis/internal/physical"
	"github.com/rp66v1/dlis/internal/record"
	"github.com/rp66v1/dlis/internal/wire"
)

const op = "dlis"

// Stage is a coarse progress stage reported while opening a file.
type Stage string

const (
	StageOpening  Stage = "opening"
	StageScanning Stage = "scanning"
	StageIndexed  Stage = "indexed"
)

// ProgressEvent is emitted as Open moves through its stages.
type ProgressEvent struct {
	Stage      Stage
	Path       string
	Records    int
	Elapsed    time.Duration
	OccurredAt time.Time
}

// Settings are library-facing scan controls.
type Settings struct {
	// EagerIndex builds the full record index during Open. When false,
	// the sweep is deferred until the first At/Len call, or skipped
	// entirely if the caller installs a cached index via Reindex or
	// LoadIndex first.
	EagerIndex bool
	// StrictConsistency turns record-level inconsistency (consistent
	// == false) into a stream-level error from At.
	StrictConsistency bool
}

// DefaultSettings returns the library's default scan behavior.
func DefaultSettings() Settings {
	return Settings{EagerIndex: true, StrictConsistency: false}
}

// Options configure a single Open call.
type Options struct {
	Settings   Settings
	Logger     *zap.Logger
	OnProgress func(ProgressEvent)
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func emit(cb func(ProgressEvent), event ProgressEvent) {
	if cb != nil {
		cb(event)
	}
}

// Result is returned by Open: the stream handle plus any non-fatal
// warnings raised while opening it (only ever a storage unit
// label version other than V1.00). Per-record warnings are not
// collected here; they are on each LogicalRecord returned by At.
type Result struct {
	Stream   *Stream
	Warnings []record.Warning
}

// Stream is an open DLIS file: a byte source plus its derived index.
type Stream struct {
	src       bytesource.Source
	rs        *record.Stream
	vrOffset  uint64
	tells     []uint64
	residuals []uint64
	explicit  []bool
	logger    *zap.Logger
	strict    bool
}

// prefixWindow bounds how much of the file Open reads up front: the
// SUL scan window, the label itself, the VRL scan window, and the VR
// header all fit comfortably inside it.
const prefixWindow = 512

// Open discovers the storage unit label and first visible record,
// builds (or, with Settings.EagerIndex false, defers) the record
// index, and returns a ready-to-use Stream.
func Open(path string, opts Options) (Result, error) {
	logger := opts.logger()
	start := time.Now()
	emit(opts.OnProgress, ProgressEvent{Stage: StageOpening, Path: path, OccurredAt: time.Now()})

	src, err := bytesource.OpenFile(path)
	if err != nil {
		return Result{}, err
	}

	prefixLen := src.Size()
	if prefixLen > prefixWindow {
		prefixLen = prefixWindow
	}
	header, err := bytesource.ReadRange(src, 0, int(prefixLen))
	if err != nil {
		_ = src.Close()
		return Result{}, err
	}

	sulOffset, err := physical.FindSUL(header)
	if err != nil {
		_ = src.Close()
		return Result{}, err
	}
	sul, err := physical.ParseSUL(header[sulOffset:])
	if err != nil {
		_ = src.Close()
		return Result{}, err
	}

	var warnings []record.Warning
	if sul.VersionAssumed {
		warnings = append(warnings, record.Warning{
			Kind:    dlerrors.KindInconsistent,
			Message: "storage unit label version is not V1.00, proceeding under V1 semantics",
		})
	}

	vrOffset, err := physical.FindVRL(header, uint64(sulOffset)+physical.SULSize)
	if err != nil {
		_ = src.Close()
		return Result{}, err
	}

	s := &Stream{src: src, vrOffset: vrOffset, logger: logger, strict: opts.Settings.StrictConsistency}

	if !opts.Settings.EagerIndex {
		return Result{Stream: s, Warnings: warnings}, nil
	}

	emit(opts.OnProgress, ProgressEvent{Stage: StageScanning, Path: path, OccurredAt: time.Now()})
	idx, err := index.Build(src, vrOffset)
	if err != nil {
		_ = src.Close()
		return Result{}, err
	}
	if err := s.reindex(idx.Tells, idx.Residuals, idx.Explicit); err != nil {
		_ = src.Close()
		return Result{}, err
	}

	logger.Debug("indexed dlis file", zap.String("path", path), zap.Int("records", len(idx.Tells)))
	emit(opts.OnProgress, ProgressEvent{
		Stage:      StageIndexed,
		Path:       path,
		Records:    len(idx.Tells),
		Elapsed:    time.Since(start),
		OccurredAt: time.Now(),
	})

	return Result{Stream: s, Warnings: warnings}, nil
}

// Reindex installs a previously computed or persisted index without
// re-running the sweep.
func (s *Stream) Reindex(tells, residuals []uint64, explicit []bool) error {
	return s.reindex(tells, residuals, explicit)
}

func (s *Stream) reindex(tells, residuals []uint64, explicit []bool) error {
	rs, err := record.NewStream(s.src, tells, residuals, explicit)
	if err != nil {
		return err
	}
	s.rs = rs
	s.tells, s.residuals, s.explicit = tells, residuals, explicit
	return nil
}

// ensureIndex runs the deferred sweep for streams opened with
// EagerIndex disabled and no cached index installed yet.
func (s *Stream) ensureIndex() error {
	if s.rs != nil {
		return nil
	}
	idx, err := index.Build(s.src, s.vrOffset)
	if err != nil {
		return err
	}
	return s.reindex(idx.Tells, idx.Residuals, idx.Explicit)
}

// Len reports how many logical records the stream's index covers.
func (s *Stream) Len() int {
	if err := s.ensureIndex(); err != nil {
		return 0
	}
	return s.rs.Len()
}

// At reassembles logical record i.
func (s *Stream) At(i int) (record.LogicalRecord, error) {
	if err := s.ensureIndex(); err != nil {
		return record.LogicalRecord{}, err
	}
	rec, err := s.rs.At(i)
	if err != nil {
		return record.LogicalRecord{}, err
	}
	if s.strict && !rec.Consistent {
		return record.LogicalRecord{}, dlerrors.New(dlerrors.KindInconsistent, op, "record failed strict consistency check")
	}
	return rec, nil
}

// ParseObjectSet parses one reassembled, unencrypted, explicit-format
// record body into an object-set.
func (s *Stream) ParseObjectSet(body []byte) (eflr.ObjectSet, error) {
	return eflr.Parse(body)
}

// Close releases the stream's underlying file handle.
func (s *Stream) Close() error {
	return s.src.Close()
}

// SaveIndex persists the stream's current index into store under
// fingerprint, so a later Open can skip re-indexing via LoadIndex.
func (s *Stream) SaveIndex(store *cache.Store, fingerprint string) error {
	return store.Save(fingerprint, s.tells, s.residuals, s.explicit)
}

// LoadIndex installs a previously persisted index from store, if one
// exists for fingerprint. found is false on a cache miss.
func (s *Stream) LoadIndex(store *cache.Store, fingerprint string) (found bool, err error) {
	snap, ok, err := store.Load(fingerprint)
	if err != nil || !ok {
		return ok, err
	}
	if err := s.reindex(snap.Tells, snap.Residuals, snap.Explicit); err != nil {
		return false, err
	}
	return true, nil
}

// ParseObjectSet parses one reassembled, unencrypted, explicit-format
// record body into an object-set without needing an open stream.
func ParseObjectSet(body []byte) (eflr.ObjectSet, error) { return eflr.Parse(body) }

// FindSUL locates the storage unit label within data.
func FindSUL(data []byte) (int, error) { return physical.FindSUL(data) }

// ParseSUL decodes the storage unit label at the start of data.
func ParseSUL(data []byte) (physical.SUL, error) { return physical.ParseSUL(data) }

// FindVRL locates the next visible record header at or after from.
func FindVRL(data []byte, from uint64) (uint64, error) { return physical.FindVRL(data, from) }

// ParseVRL decodes a visible record header at the start of data.
func ParseVRL(data []byte) (physical.VR, error) { return physical.ParseVRL(data) }

// Index runs the indexing sweep over src starting at the first
// visible record's header offset.
func Index(src bytesource.Source, firstVRHeaderOffset uint64) (index.Index, error) {
	return index.Build(src, firstVRHeaderOffset)
}

// DecodeValue decodes a single representation-code value from data.
func DecodeValue(code wire.Code, data []byte) (wire.Value, error) {
	return wire.Decode(code, wire.NewCursor(data))
}
