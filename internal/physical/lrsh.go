package physical

import (
	"encoding/binary"

	"github.com/rp66v1/dlis/internal/dlerrors"
)

const opParseLRSH = "physical.parse-lrsh"

// LRSHSize is the fixed header size of a Logical Record Segment.
const LRSHSize = 4

// Attributes holds the eight LRSH attribute flag bits, extracted as
// a pure function of the attribute byte.
type Attributes struct {
	ExplicitFormatting bool
	HasPredecessor     bool
	HasSuccessor       bool
	Encryption         bool
	EncryptionPacket   bool
	Checksum           bool
	TrailingLength     bool
	Padding            bool
}

// DecodeAttributes extracts the eight attribute bits from a single
// LRSH attribute byte. Bit order follows RP66 V1's listing,
// MSB-first: explicit-formatting, has-predecessor, has-successor,
// encryption, encryption-packet, checksum, trailing-length, padding.
func DecodeAttributes(b byte) Attributes {
	return Attributes{
		ExplicitFormatting: b&0x80 != 0,
		HasPredecessor:     b&0x40 != 0,
		HasSuccessor:       b&0x20 != 0,
		Encryption:         b&0x10 != 0,
		EncryptionPacket:   b&0x08 != 0,
		Checksum:           b&0x04 != 0,
		TrailingLength:     b&0x02 != 0,
		Padding:            b&0x01 != 0,
	}
}

// LRSH is a decoded Logical Record Segment header.
type LRSH struct {
	Length     uint16 // includes the header and any trailer bytes
	Attributes Attributes
	Type       uint8
}

// ParseLRSH decodes a 4-byte segment header from the start of data
// and validates its two structural invariants: length >= LRSHSize,
// and length is even.
func ParseLRSH(data []byte) (LRSH, error) {
	if len(data) < LRSHSize {
		return LRSH{}, dlerrors.New(dlerrors.KindUnexpectedValue, opParseLRSH, "input shorter than 4 bytes")
	}
	length := binary.BigEndian.Uint16(data[0:2])
	attrByte := data[2]
	typ := data[3]

	if length < LRSHSize {
		return LRSH{}, dlerrors.New(dlerrors.KindUnexpectedValue, opParseLRSH, "segment length shorter than its own header")
	}
	if length%2 != 0 {
		return LRSH{}, dlerrors.New(dlerrors.KindUnexpectedValue, opParseLRSH, "segment length is not even")
	}

	return LRSH{Length: length, Attributes: DecodeAttributes(attrByte), Type: typ}, nil
}
