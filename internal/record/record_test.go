package record

import (
	"testing"

	"github.com/rp66v1/dlis/internal/bytesource"
	"github.com/rp66v1/dlis/internal/dlerrors"
	"github.com/rp66v1/dlis/internal/index"
)

func buildVR(buf []byte, length uint16, version byte) []byte {
	return append(buf, byte(length>>8), byte(length), 0xFF, version)
}

func buildLRSH(buf []byte, length uint16, attrs byte, typ byte) []byte {
	return append(buf, byte(length>>8), byte(length), attrs, typ)
}

// openIndexed builds an index over data and wraps it in a Stream.
func openIndexed(t *testing.T, data []byte) *Stream {
	t.Helper()
	src := bytesource.FromBytes(data)
	idx, err := index.Build(src, 0)
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	s, err := NewStream(src, idx.Tells, idx.Residuals, idx.Explicit)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	return s
}

func TestAtMinimumRecord(t *testing.T) {
	var data []byte
	data = buildVR(data, 8, 1)
	data = buildLRSH(data, 4, 0, 0)

	s := openIndexed(t, data)
	rec, err := s.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if len(rec.Data) != 0 {
		t.Fatalf("Data = %v, want empty", rec.Data)
	}
	if rec.Type != 0 || !rec.Consistent {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestAtMultiSegmentRecord(t *testing.T) {
	var data []byte
	data = buildVR(data, 24, 1)
	data = buildLRSH(data, 12, 0x20, 5) // has-successor
	data = append(data, []byte{1, 2, 3, 4, 5, 6, 7, 8}...)
	data = buildLRSH(data, 8, 0x40, 5) // has-predecessor
	data = append(data, []byte{9, 10, 11, 12}...)

	s := openIndexed(t, data)
	rec, err := s.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if len(rec.Data) != 12 {
		t.Fatalf("len(Data) = %d, want 12", len(rec.Data))
	}
	if rec.Type != 5 || !rec.Consistent {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestAtCrossVRRecord(t *testing.T) {
	var data []byte
	data = buildVR(data, 12, 1)
	data = buildLRSH(data, 8, 0x20, 5)
	data = append(data, []byte{1, 2, 3, 4}...)
	data = buildVR(data, 12, 1)
	data = buildLRSH(data, 8, 0x40, 5)
	data = append(data, []byte{5, 6, 7, 8}...)

	s := openIndexed(t, data)
	rec, err := s.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if string(rec.Data) != string(want) {
		t.Fatalf("Data = %v, want %v", rec.Data, want)
	}
	if !rec.Consistent {
		t.Fatalf("expected consistent record, got %+v", rec)
	}
}

func TestAtAllTrailers(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	pad := []byte{0, 0, 0, 4} // last byte is the pad count
	checksum := []byte{0xAB, 0xCD}
	trailingLen := []byte{0x00, 0x12}
	body := append(append(append(append([]byte{}, payload...), pad...), checksum...), trailingLen...)

	segLen := uint16(4 + len(body))
	var data []byte
	data = buildVR(data, 4+segLen, 1)
	data = buildLRSH(data, segLen, 0x01|0x04|0x02, 9) // padding|checksum|trailing-length
	data = append(data, body...)

	s := openIndexed(t, data)
	rec, err := s.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if len(rec.Data) != 10 {
		t.Fatalf("len(Data) = %d, want 10", len(rec.Data))
	}
	if string(rec.Data) != string(payload) {
		t.Fatalf("Data = %v, want %v", rec.Data, payload)
	}
}

func TestAtInconsistentType(t *testing.T) {
	var data []byte
	data = buildVR(data, 24, 1)
	data = buildLRSH(data, 12, 0x20, 3) // type 3, has-successor
	data = append(data, []byte{1, 2, 3, 4, 5, 6, 7, 8}...)
	data = buildLRSH(data, 8, 0x40, 7) // type 7, has-predecessor
	data = append(data, []byte{9, 10, 11, 12}...)

	s := openIndexed(t, data)
	rec, err := s.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if rec.Consistent {
		t.Fatalf("expected inconsistent record due to type mismatch")
	}
	if rec.Type != 3 {
		t.Fatalf("Type = %d, want 3 (first segment's type)", rec.Type)
	}
}

func TestAtEncryptedRecord(t *testing.T) {
	ciphertext := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	var data []byte
	data = buildVR(data, 12, 1)
	data = buildLRSH(data, 8, 0x80|0x10, 2) // explicit, encrypted
	data = append(data, ciphertext...)

	s := openIndexed(t, data)
	rec, err := s.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if !rec.Encryption || !rec.ExplicitFormatting {
		t.Fatalf("rec = %+v, want encrypted explicit record", rec)
	}
	// Encrypted payloads come back verbatim; no structural parse is
	// attempted on them.
	if string(rec.Data) != string(ciphertext) {
		t.Fatalf("Data = %v, want raw ciphertext %v", rec.Data, ciphertext)
	}
}

func TestAtSegmentLongerThanResidual(t *testing.T) {
	var data []byte
	data = buildVR(data, 8, 1)
	data = buildLRSH(data, 4, 0, 0)
	src := bytesource.FromBytes(data)
	// Hand-build a Stream with a bogus residual that is too small.
	s, err := NewStream(src, []uint64{4}, []uint64{2}, []bool{false})
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	if _, err := s.At(0); dlerrors.KindOf(err) != dlerrors.KindInconsistent {
		t.Fatalf("At(0) err = %v, want KindInconsistent", err)
	}
}

func TestAtIndexOutOfRange(t *testing.T) {
	var data []byte
	data = buildVR(data, 8, 1)
	data = buildLRSH(data, 4, 0, 0)
	s := openIndexed(t, data)
	if _, err := s.At(5); dlerrors.KindOf(err) != dlerrors.KindInvalidArgument {
		t.Fatalf("At(5) err = %v, want KindInvalidArgument", err)
	}
}
