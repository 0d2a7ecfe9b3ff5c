// Package bytesource defines a random-accessible byte range
// abstraction in place of committing to either memory-mapped or
// seek-and-read I/O: the reassembler only needs ReadAt-shaped access
// plus a known size. This package sticks to the standard library's
// io.ReaderAt, which both a disk file and an in-memory buffer satisfy
// without modification.
package bytesource

import (
	"io"
	"os"

	"github.com/rp66v1/dlis/internal/dlerrors"
)

const op = "bytesource"

// Source is a random-accessible byte range of known length. It is
// borrowed, not owned, by decoders; only Stream-level code calls
// Close.
type Source interface {
	io.ReaderAt
	Size() int64
	Close() error
}

// diskSource backs a Source with a seek-and-read *os.File.
type diskSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path for random access.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dlerrors.Wrap(dlerrors.KindIOError, op, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, dlerrors.Wrap(dlerrors.KindIOError, op, err)
	}
	return &diskSource{f: f, size: info.Size()}, nil
}

func (d *diskSource) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

func (d *diskSource) Size() int64 { return d.size }

func (d *diskSource) Close() error {
	return d.f.Close()
}

// memSource backs a Source with an in-memory byte slice, useful for
// tests and for callers that have already loaded a file into memory.
type memSource struct {
	data []byte
}

// FromBytes wraps data as a Source. The slice is borrowed: callers
// must not mutate it while the Source is in use.
func FromBytes(data []byte) Source {
	return &memSource{data: data}
}

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, dlerrors.New(dlerrors.KindInvalidArgument, op, "negative offset")
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memSource) Size() int64 { return int64(len(m.data)) }

func (m *memSource) Close() error { return nil }

// ReadRange reads exactly n bytes at off, returning a truncated error
// if fewer than n bytes are available.
func ReadRange(s Source, off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := s.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return nil, dlerrors.Wrap(dlerrors.KindIOError, op, err)
	}
	if read < n {
		return nil, dlerrors.New(dlerrors.KindTruncated, op, "short read")
	}
	return buf, nil
}
