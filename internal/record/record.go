// Package record implements the logical-record reassembler: given a
// stream's index (tells/residuals/explicit), it reconstructs record
// bodies by walking LRSH-delimited segments, stripping trailers, and
// concatenating bodies across Visible Record boundaries when a
// segment chain spans more than one VR.
package record

import (
	"github.com/rp66v1/dlis/internal/bytesource"
	"github.com/rp66v1/dlis/internal/dlerrors"
	"github.com/rp66v1/dlis/internal/physical"
)

const op = "record"

// Warning describes a non-fatal anomaly observed while reassembling a
// record. Stream-level problems surface as errors; record-level ones
// are collected here and must not abort the call.
type Warning struct {
	Kind    dlerrors.Kind
	Message string
}

// LogicalRecord is one fully reassembled logical record: its
// effective attribute mask (taken from the first segment), its type,
// the concatenated, trailer-stripped body, and whether every
// segment-chain consistency check held.
type LogicalRecord struct {
	ExplicitFormatting bool
	Encryption         bool
	Type               uint8
	Data               []byte
	Consistent         bool
	Warnings           []Warning
}

// Stream pairs a byte source with the index arrays produced by
// internal/index, and knows how to reassemble any record by number.
type Stream struct {
	src       bytesource.Source
	tells     []uint64
	residuals []uint64
	explicit  []bool
}

// NewStream wraps src with a previously built (or reloaded) index.
// tells and residuals must be the same length; explicit may be nil if
// the caller never needs the pre-parsed explicit-formatting hint.
func NewStream(src bytesource.Source, tells, residuals []uint64, explicit []bool) (*Stream, error) {
	if len(tells) != len(residuals) {
		return nil, dlerrors.New(dlerrors.KindInvalidArgument, op, "tells and residuals have different lengths")
	}
	if explicit != nil && len(explicit) != len(tells) {
		return nil, dlerrors.New(dlerrors.KindInvalidArgument, op, "explicit flags length does not match tells")
	}
	return &Stream{src: src, tells: tells, residuals: residuals, explicit: explicit}, nil
}

// Len reports how many logical records the stream's index covers.
func (s *Stream) Len() int { return len(s.tells) }

// Close releases the underlying byte source.
func (s *Stream) Close() error { return s.src.Close() }

type segment struct {
	attrs physical.Attributes
	typ   uint8
}

// At reconstructs logical record i: read segments until one has no
// successor, stripping optional trailers from each segment's body
// before appending it, and crossing into the next Visible Record
// whenever a VR's residual runs out mid-chain.
func (s *Stream) At(i int) (LogicalRecord, error) {
	if i < 0 || i >= len(s.tells) {
		return LogicalRecord{}, dlerrors.New(dlerrors.KindInvalidArgument, op, "record index out of range")
	}

	cursor := s.tells[i]
	remaining := s.residuals[i]

	var (
		body     []byte
		segs     []segment
		warnings []Warning
	)

	for {
		if remaining == 0 {
			vrBytes, err := bytesource.ReadRange(s.src, int64(cursor), physical.VRSize)
			if err != nil {
				return LogicalRecord{}, dlerrors.Wrap(dlerrors.KindIOError, op, err)
			}
			vr, err := physical.ParseVRL(vrBytes)
			if err != nil {
				return LogicalRecord{}, err
			}
			if vr.Version != 1 {
				warnings = append(warnings, Warning{
					Kind:    dlerrors.KindInconsistent,
					Message: "visible record version is not 1",
				})
			}
			cursor += physical.VRSize
			remaining = uint64(vr.Length) - physical.VRSize
			continue
		}

		hdrBytes, err := bytesource.ReadRange(s.src, int64(cursor), physical.LRSHSize)
		if err != nil {
			return LogicalRecord{}, dlerrors.Wrap(dlerrors.KindIOError, op, err)
		}
		lrsh, err := physical.ParseLRSH(hdrBytes)
		if err != nil {
			return LogicalRecord{}, err
		}
		segLen := uint64(lrsh.Length)
		if segLen > remaining {
			return LogicalRecord{}, dlerrors.New(dlerrors.KindInconsistent, op, "segment length exceeds bytes remaining in visible record")
		}

		bodyLen := segLen - physical.LRSHSize
		segBody, err := bytesource.ReadRange(s.src, int64(cursor+physical.LRSHSize), int(bodyLen))
		if err != nil {
			return LogicalRecord{}, dlerrors.Wrap(dlerrors.KindIOError, op, err)
		}
		segBody, err = stripTrailers(segBody, lrsh.Attributes)
		if err != nil {
			return LogicalRecord{}, err
		}

		segs = append(segs, segment{attrs: lrsh.Attributes, typ: lrsh.Type})
		body = append(body, segBody...)

		cursor += segLen
		remaining -= segLen

		if !lrsh.Attributes.HasSuccessor {
			if err := s.checkContiguous(i, cursor); err != nil {
				return LogicalRecord{}, err
			}
			return finalize(segs, body, warnings)
		}
	}
}

// checkContiguous enforces the record boundary rule: after finalising
// record i, the stream position must land exactly on the next
// record's tell, or on EOF if i is the last record.
func (s *Stream) checkContiguous(i int, cursorAfter uint64) error {
	if i+1 < len(s.tells) {
		if cursorAfter != s.tells[i+1] {
			return dlerrors.New(dlerrors.KindInconsistent, op, "non-contiguous record")
		}
		return nil
	}
	if cursorAfter != uint64(s.src.Size()) {
		return dlerrors.New(dlerrors.KindInconsistent, op, "non-contiguous record")
	}
	return nil
}

// stripTrailers removes the optional trailing-length/checksum/pad
// trailers from the tail of a segment body. Despite trailing-length
// naming itself "trailing", it sits closest to the true tail on the
// wire, then checksum, then padding last: the pad count byte is only
// meaningful once the other two trailers have already been chopped
// off ahead of it.
func stripTrailers(data []byte, attrs physical.Attributes) ([]byte, error) {
	if attrs.TrailingLength {
		if len(data) < 2 {
			return nil, dlerrors.New(dlerrors.KindTruncated, op, "segment too short for trailing-length trailer")
		}
		data = data[:len(data)-2]
	}
	if attrs.Checksum {
		if len(data) < 2 {
			return nil, dlerrors.New(dlerrors.KindTruncated, op, "segment too short for checksum trailer")
		}
		data = data[:len(data)-2]
	}
	if attrs.Padding {
		if len(data) < 1 {
			return nil, dlerrors.New(dlerrors.KindTruncated, op, "segment too short for pad trailer")
		}
		padCount := int(data[len(data)-1])
		if padCount < 1 || padCount > len(data) {
			return nil, dlerrors.New(dlerrors.KindInconsistent, op, "pad count exceeds segment body")
		}
		data = data[:len(data)-padCount]
	}
	return data, nil
}

// finalize computes the effective attribute mask, type, and
// consistency flag for a completed segment chain.
func finalize(segs []segment, body []byte, warnings []Warning) (LogicalRecord, error) {
	if len(segs) == 0 {
		return LogicalRecord{}, dlerrors.New(dlerrors.KindInconsistent, op, "record has no segments")
	}

	first := segs[0]
	consistent := true

	for _, sg := range segs {
		if sg.typ != first.typ {
			consistent = false
		}
	}

	for n, sg := range segs {
		switch {
		case len(segs) == 1:
			if sg.attrs.HasPredecessor || sg.attrs.HasSuccessor {
				consistent = false
			}
		case n == 0:
			if sg.attrs.HasPredecessor || !sg.attrs.HasSuccessor {
				consistent = false
			}
		case n == len(segs)-1:
			if !sg.attrs.HasPredecessor || sg.attrs.HasSuccessor {
				consistent = false
			}
		default:
			if !sg.attrs.HasPredecessor || !sg.attrs.HasSuccessor {
				consistent = false
			}
		}
	}

	if len(warnings) > 0 {
		consistent = false
	}

	return LogicalRecord{
		ExplicitFormatting: first.attrs.ExplicitFormatting,
		Encryption:         first.attrs.Encryption,
		Type:               first.typ,
		Data:               body,
		Consistent:         consistent,
		Warnings:           warnings,
	}, nil
}
