package wire

import "testing"

func TestParseFormatVariable(t *testing.T) {
	f, err := ParseFormat("iL")
	if err != nil {
		t.Fatalf("ParseFormat: %v", err)
	}
	if !f.Variable {
		t.Fatalf("expected Variable=true for a format containing L")
	}

	f2, err := ParseFormat("iI")
	if err != nil {
		t.Fatalf("ParseFormat: %v", err)
	}
	if f2.Variable {
		t.Fatalf("expected Variable=false for an all-fixed format")
	}
	if f2.SrcSize() != 8 {
		t.Fatalf("SrcSize() = %d, want 8", f2.SrcSize())
	}
}

func TestParseFormatInvalidChar(t *testing.T) {
	if _, err := ParseFormat("iZ"); err == nil {
		t.Fatalf("expected error for invalid format character")
	}
}

func TestUnpackFixed(t *testing.T) {
	src := []byte{0x00, 0x00, 0x00, 0x2A, 0x00, 0x01}
	out, err := Unpack("iH", src)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(out))
	}
	if out[0].(int32) != 42 {
		t.Fatalf("field 0 = %v, want 42", out[0])
	}
	if out[1].(uint16) != 1 {
		t.Fatalf("field 1 = %v, want 1", out[1])
	}
}

func TestUnpackVariable(t *testing.T) {
	src := []byte{0x02, 'H', 'i'}
	out, err := Unpack("s", src)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if out[0].(string) != "Hi" {
		t.Fatalf("field 0 = %v, want Hi", out[0])
	}
}

func TestUnpackTruncated(t *testing.T) {
	if _, err := Unpack("i", []byte{0x00, 0x01}); err == nil {
		t.Fatalf("expected truncated error")
	}
}
