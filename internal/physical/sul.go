// Package physical implements the physical-framing layer of RP66 V1:
// locating the Storage Unit Label and Visible Record envelopes, and
// decoding Logical Record Segment headers.
package physical

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/rp66v1/dlis/internal/dlerrors"
)

const opFindSUL = "physical.find-sul"
const opParseSUL = "physical.parse-sul"

// sulScanWindow bounds how far FindSUL will scan for the "RECORD"
// literal, tolerating a garbage prefix shorter than this.
const sulScanWindow = 200

// SULSize is the fixed on-disk size of the Storage Unit Label.
const SULSize = 80

// FindSUL scans at most the first sulScanWindow bytes of data for the
// literal "RECORD" and returns the byte offset where the SUL itself
// begins (9 bytes before the needle: 4 sequence-number digits plus
// the 5-byte "V1.00" version field).
func FindSUL(data []byte) (int, error) {
	window := data
	if len(window) > sulScanWindow {
		window = window[:sulScanWindow]
	}
	idx := bytes.Index(window, []byte("RECORD"))
	if idx < 0 {
		return 0, dlerrors.New(dlerrors.KindNotFound, opFindSUL, "RECORD literal not found in scan window")
	}
	if idx < 9 {
		return 0, dlerrors.New(dlerrors.KindInconsistent, opFindSUL, "RECORD literal too close to start of file for a valid SUL prefix")
	}
	start := idx - 9
	if start+SULSize > len(data) {
		return 0, dlerrors.New(dlerrors.KindInconsistent, opFindSUL, "not enough trailing data to hold a full Storage Unit Label")
	}
	return start, nil
}

// SUL is the decoded 80-byte Storage Unit Label.
type SUL struct {
	SequenceNumber  int
	Version         string
	Structure       string
	MaxRecordLength int
	StorageSetID    string
	VersionAssumed  bool // true if Version was not "V1.00" and we fell back to V1 semantics
}

// ParseSUL decodes an 80-byte Storage Unit Label starting at data[0].
// data must be at least SULSize bytes.
func ParseSUL(data []byte) (SUL, error) {
	if len(data) < SULSize {
		return SUL{}, dlerrors.New(dlerrors.KindUnexpectedValue, opParseSUL, "input shorter than 80 bytes")
	}

	seqStr := string(data[0:4])
	seq, err := strconv.Atoi(strings.TrimSpace(seqStr))
	if err != nil {
		return SUL{}, dlerrors.Wrap(dlerrors.KindUnexpectedValue, opParseSUL, err)
	}

	version := string(data[4:9])
	structure := string(data[9:15])
	if structure != "RECORD" {
		return SUL{}, dlerrors.New(dlerrors.KindInconsistent, opParseSUL, "structure field is not RECORD")
	}

	maxLenStr := strings.TrimSpace(string(data[15:20]))
	maxLen, err := strconv.Atoi(maxLenStr)
	if err != nil {
		return SUL{}, dlerrors.Wrap(dlerrors.KindUnexpectedValue, opParseSUL, err)
	}

	id := string(data[20:80])

	// Only V1 is supported. Rather than reject other versions
	// outright, warn (via VersionAssumed) and proceed under V1
	// semantics, mirroring how VR version mismatches are handled.
	assumed := version != "V1.00"

	return SUL{
		SequenceNumber:  seq,
		Version:         version,
		Structure:       structure,
		MaxRecordLength: maxLen,
		StorageSetID:    id,
		VersionAssumed:  assumed,
	}, nil
}
