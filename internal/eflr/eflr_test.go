package eflr

import (
	"testing"

	"github.com/rp66v1/dlis/internal/dlerrors"
	"github.com/rp66v1/dlis/internal/wire"
)

func TestParseObjectSetBasic(t *testing.T) {
	var body []byte
	// set header: type="CH", name="FRAME1"
	body = append(body, 0xC0, 2, 'C', 'H', 6, 'F', 'R', 'A', 'M', 'E', '1')
	// template attribute 0: label only
	body = append(body, 0x10, 5, 'D', 'E', 'P', 'T', 'H')
	// template attribute 1: count=2, reprc=USHORT(15), values=[7,8]
	body = append(body, 0x0D, 0x02, 0x0F, 7, 8)
	// object header: obname{origin=1,copy=0,id="OBJ1"}
	body = append(body, 0x80, 0x01, 0x00, 4, 'O', 'B', 'J', '1')
	// attribute 0: absent, inherits template
	body = append(body, 0x20)
	// attribute 1: value-only, inherits count/reprc from template, values=[9,10]
	body = append(body, 0x01, 9, 10)

	set, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if set.Header.Type != "CH" || set.Header.Name != "FRAME1" {
		t.Fatalf("Header = %+v", set.Header)
	}
	if len(set.Template) != 2 {
		t.Fatalf("Template len = %d, want 2", len(set.Template))
	}
	if set.Template[0].Label != "DEPTH" {
		t.Fatalf("Template[0].Label = %q", set.Template[0].Label)
	}
	if set.Template[1].Count != 2 || set.Template[1].Reprc != wire.USHORT {
		t.Fatalf("Template[1] = %+v", set.Template[1])
	}

	if len(set.Objects) != 1 {
		t.Fatalf("Objects len = %d, want 1", len(set.Objects))
	}
	obj := set.Objects[0]
	if obj.Name.ID != "OBJ1" || obj.Name.Origin != 1 {
		t.Fatalf("Name = %+v", obj.Name)
	}
	if !obj.Attributes[0].Absent || obj.Attributes[0].Label != "DEPTH" {
		t.Fatalf("Attributes[0] = %+v, want absent with inherited label", obj.Attributes[0])
	}
	if obj.Attributes[1].Count != 2 || obj.Attributes[1].Reprc != wire.USHORT {
		t.Fatalf("Attributes[1] = %+v", obj.Attributes[1])
	}
	if len(obj.Attributes[1].Values) != 2 {
		t.Fatalf("Attributes[1].Values = %v, want 2 values", obj.Attributes[1].Values)
	}

	fp := Fingerprint(set.Header.Type, obj.Name)
	got, ok := set.ByFingerprint[fp]
	if !ok || got.Name.ID != "OBJ1" {
		t.Fatalf("ByFingerprint lookup failed for %q", fp)
	}
}

func TestParseObjectCutShort(t *testing.T) {
	var body []byte
	body = append(body, 0xC0, 1, 'C', 1, 'N')
	// two template slots: label-only, then count=1 reprc=USHORT value=[3]
	body = append(body, 0x10, 3, 'L', 'B', 'L')
	body = append(body, 0x0D, 0x01, 0x0F, 3)
	// first object carries only its first attribute; the second slot is
	// cut short by the next object header
	body = append(body, 0x80, 0x01, 0x00, 1, 'A')
	body = append(body, 0x10, 2, 'L', '2')
	// second object carries nothing at all (body ends)
	body = append(body, 0x80, 0x01, 0x00, 1, 'B')

	set, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.Objects) != 2 {
		t.Fatalf("Objects len = %d, want 2", len(set.Objects))
	}
	a := set.Objects[0]
	if len(a.Attributes) != 2 || a.Attributes[0].Label != "L2" {
		t.Fatalf("Objects[0] = %+v", a)
	}
	if a.Attributes[1].Count != 1 || a.Attributes[1].Reprc != wire.USHORT {
		t.Fatalf("Objects[0].Attributes[1] = %+v, want template defaults", a.Attributes[1])
	}
	b := set.Objects[1]
	if len(b.Attributes) != 2 || b.Attributes[0].Label != "LBL" {
		t.Fatalf("Objects[1] = %+v, want fully templated attributes", b)
	}
}

func TestParseSetHeaderMissingFlags(t *testing.T) {
	body := []byte{0x40, 2, 'C', 'H'} // hasName only, missing hasType
	if _, err := Parse(body); dlerrors.KindOf(err) != dlerrors.KindInconsistent {
		t.Fatalf("Parse err = %v, want KindInconsistent", err)
	}
}

func TestParseTruncatedTemplate(t *testing.T) {
	body := []byte{0xC0, 1, 'C', 1, 'N', 0x10, 3, 'D', 'E'} // label claims 3 bytes, only 2 given
	if _, err := Parse(body); dlerrors.KindOf(err) != dlerrors.KindTruncated {
		t.Fatalf("Parse err = %v, want KindTruncated", err)
	}
}

func TestParseOverrunBody(t *testing.T) {
	var body []byte
	body = append(body, 0xC0, 1, 'C', 1, 'N')
	// no template attributes; object header with trailing garbage after it
	body = append(body, 0x80, 0x01, 0x00, 1, 'X')
	body = append(body, 0xFF) // stray byte past a clean parse
	if _, err := Parse(body); err == nil {
		t.Fatalf("expected an error for trailing unparsed byte")
	}
}
