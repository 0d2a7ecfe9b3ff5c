package physical

import (
	"bytes"
	"encoding/binary"

	"github.com/rp66v1/dlis/internal/dlerrors"
)

const opFindVRL = "physical.find-vrl"
const opParseVRL = "physical.parse-vrl"

const vrlScanWindow = 200

// VRSize is the fixed header size of a Visible Record envelope.
const VRSize = 4

// VR is a decoded Visible Record header.
type VR struct {
	Length  uint16 // includes the 4-byte header itself
	Version uint8
}

// FindVRL scans at most vrlScanWindow bytes starting at from for the
// two-byte marker 0xFF 0x01 and returns the offset of the VR header
// itself (2 bytes before the marker, where the unorm length lives).
func FindVRL(data []byte, from uint64) (uint64, error) {
	if from > uint64(len(data)) {
		return 0, dlerrors.New(dlerrors.KindInvalidArgument, opFindVRL, "from is past end of data")
	}
	window := data[from:]
	if len(window) > vrlScanWindow {
		window = window[:vrlScanWindow]
	}
	idx := bytes.Index(window, []byte{0xFF, 0x01})
	if idx < 0 {
		return 0, dlerrors.New(dlerrors.KindNotFound, opFindVRL, "0xFF 0x01 marker not found in scan window")
	}
	if idx < 2 {
		return 0, dlerrors.New(dlerrors.KindInconsistent, opFindVRL, "marker too close to scan start for a length prefix")
	}
	return from + uint64(idx) - 2, nil
}

// ParseVRL decodes a 4-byte Visible Record header from the start of data.
func ParseVRL(data []byte) (VR, error) {
	if len(data) < VRSize {
		return VR{}, dlerrors.New(dlerrors.KindUnexpectedValue, opParseVRL, "input shorter than 4 bytes")
	}
	length := binary.BigEndian.Uint16(data[0:2])
	ff := data[2]
	version := data[3]
	if ff != 0xFF {
		return VR{}, dlerrors.New(dlerrors.KindUnexpectedValue, opParseVRL, "fixed marker byte is not 0xFF")
	}
	if length < VRSize {
		return VR{}, dlerrors.New(dlerrors.KindUnexpectedValue, opParseVRL, "visible record length shorter than its own header")
	}
	return VR{Length: length, Version: version}, nil
}
