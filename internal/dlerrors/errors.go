// Package dlerrors implements the library's closed error taxonomy:
// a handful of failure kinds, distinguished so that callers can tell
// a record-level inconsistency (recoverable) from a stream-level or
// caller-facing failure (fatal).
package dlerrors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind is a closed enumeration of failure categories.
type Kind int

const (
	// KindUnknown is never produced by this package; it is the zero
	// value returned by KindOf for errors outside the taxonomy.
	KindUnknown Kind = iota
	KindIOError
	KindNotFound
	KindTruncated
	KindInconsistent
	KindUnexpectedValue
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindIOError:
		return "io-error"
	case KindNotFound:
		return "not-found"
	case KindTruncated:
		return "truncated"
	case KindInconsistent:
		return "inconsistent"
	case KindUnexpectedValue:
		return "unexpected-value"
	case KindInvalidArgument:
		return "invalid-argument"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by this module's
// decoding, framing, indexing, reassembly, object-set and cache
// operations. Op names the failing operation
// (e.g. "find-sul", "parse-object-set") for log correlation.
type Error struct {
	Kind Kind
	Op   string
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.err)
}

func (e *Error) Unwrap() error { return e.err }

// Cause lets pkgerrors.Cause walk through an *Error to its wrapped error.
func (e *Error) Cause() error { return e.err }

// New builds a taxonomy error with no further wrapped cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, err: pkgerrors.New(msg)}
}

// Wrap attaches a taxonomy Kind and operation name to an existing
// error, preserving its cause chain via github.com/pkg/errors so that
// pkgerrors.Cause(err) still reaches the original failure.
func Wrap(kind Kind, op string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, err: pkgerrors.WithStack(cause)}
}

// Cause returns the deepest wrapped error, matching pkg/errors.Cause.
func Cause(err error) error {
	return pkgerrors.Cause(err)
}

// KindOf returns the taxonomy Kind of err, or KindUnknown if err was
// not produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.err
	}
	return false
}
