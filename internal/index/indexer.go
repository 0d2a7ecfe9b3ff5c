// Package index implements the single-pass record indexer: given a
// byte range and the absolute offset of the first Visible Record's
// header, it produces the three parallel index arrays (tells,
// residuals, explicit) the reassembler seeks by.
package index

import (
	"github.com/rp66v1/dlis/internal/bytesource"
	"github.com/rp66v1/dlis/internal/dlerrors"
	"github.com/rp66v1/dlis/internal/physical"
)

const op = "index"

// Index is the per-logical-record parallel result of one indexing pass.
type Index struct {
	Tells     []uint64
	Residuals []uint64
	Explicit  []bool
}

// minVRSize is the smallest plausible Visible Record: its own 4-byte
// header plus room for at least one LRSH.
const minVRSize = physical.VRSize + physical.LRSHSize

// Build performs a single forward pass over src, starting at the
// absolute offset of the first Visible Record's header
// (firstVRHeaderOffset). tells values in the returned Index are
// absolute byte offsets of each logical record's leading LRSH, the
// same offsets the reassembler (internal/record) seeks to, and each
// residual counts the bytes left in the enclosing VR at that point.
func Build(src bytesource.Source, firstVRHeaderOffset uint64) (Index, error) {
	end := uint64(src.Size())
	if firstVRHeaderOffset >= end {
		return Index{}, dlerrors.New(dlerrors.KindInvalidArgument, op, "start offset is past end of data")
	}

	idx := Index{
		Tells:     make([]uint64, 0, guessCount(end-firstVRHeaderOffset)),
		Residuals: make([]uint64, 0, guessCount(end-firstVRHeaderOffset)),
		Explicit:  make([]bool, 0, guessCount(end-firstVRHeaderOffset)),
	}

	_, cursor, residual, err := consumeVRL(src, firstVRHeaderOffset)
	if err != nil {
		return Index{}, err
	}

	for cursor < end {
		if residual == 0 {
			_, newCursor, newResidual, err := consumeVRL(src, cursor)
			if err != nil {
				return Index{}, err
			}
			if newCursor <= cursor {
				return Index{}, dlerrors.New(dlerrors.KindUnexpectedValue, op, "visible record did not advance the cursor")
			}
			cursor = newCursor
			residual = newResidual
			continue
		}

		if residual < physical.LRSHSize {
			return Index{}, dlerrors.New(dlerrors.KindInconsistent, op, "residual smaller than a segment header")
		}

		hdrBytes, err := bytesource.ReadRange(src, int64(cursor), physical.LRSHSize)
		if err != nil {
			return Index{}, dlerrors.Wrap(dlerrors.KindIOError, op, err)
		}
		lrsh, err := physical.ParseLRSH(hdrBytes)
		if err != nil {
			return Index{}, err
		}

		segLen := uint64(lrsh.Length)
		if segLen > residual {
			return Index{}, dlerrors.New(dlerrors.KindInconsistent, op, "segment length exceeds bytes remaining in visible record")
		}

		if !lrsh.Attributes.HasPredecessor {
			idx.Tells = append(idx.Tells, cursor)
			idx.Residuals = append(idx.Residuals, residual)
			idx.Explicit = append(idx.Explicit, lrsh.Attributes.ExplicitFormatting)
		}

		// tells was recorded at the LRSH's own start, above; advance past
		// both the header just read and its body in one step.
		newCursor := cursor + segLen
		if newCursor < cursor {
			return Index{}, dlerrors.New(dlerrors.KindUnexpectedValue, op, "cursor overflow while advancing past segment body")
		}
		cursor = newCursor
		residual -= segLen
	}

	if residual != 0 {
		return idx, dlerrors.New(dlerrors.KindTruncated, op, "scan ended mid-visible-record")
	}

	return idx, nil
}

// consumeVRL reads and validates a Visible Record header at
// headerOffset, returning the advanced cursor (past the header) and
// the initial residual (bytes remaining in the VR body).
func consumeVRL(src bytesource.Source, headerOffset uint64) (physical.VR, uint64, uint64, error) {
	hdrBytes, err := bytesource.ReadRange(src, int64(headerOffset), physical.VRSize)
	if err != nil {
		return physical.VR{}, 0, 0, dlerrors.Wrap(dlerrors.KindIOError, op, err)
	}
	vr, err := physical.ParseVRL(hdrBytes)
	if err != nil {
		return physical.VR{}, 0, 0, err
	}
	if uint64(vr.Length) < minVRSize {
		return physical.VR{}, 0, 0, dlerrors.New(dlerrors.KindUnexpectedValue, op, "visible record too short to hold a segment header")
	}
	cursor := headerOffset + physical.VRSize
	residual := uint64(vr.Length) - physical.VRSize
	return vr, cursor, residual, nil
}

// guessCount pre-sizes the output slices at roughly one record per
// 4096 bytes. Go slices grow on their own geometric schedule past
// this hint, so append amortises any underestimate.
func guessCount(byteSpan uint64) int {
	n := int(byteSpan / 4096)
	if n < 16 {
		n = 16
	}
	return n
}
