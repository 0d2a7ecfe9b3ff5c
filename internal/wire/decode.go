package wire

import (
	"encoding/binary"
	"math"

	"github.com/rp66v1/dlis/internal/dlerrors"
)

const op = "wire.decode"

func truncated(what string) error {
	return dlerrors.New(dlerrors.KindTruncated, op, what+": not enough bytes")
}

func unexpectedCode(code Code) error {
	return dlerrors.New(dlerrors.KindUnexpectedValue, op, "representation code out of [1,27]: "+code.String())
}

// DecodeFshort reads a 2-byte RP66 V1 short float: the top 12 bits
// are a two's-complement fraction (binary point after the sign bit,
// i.e. the big-endian int16 of those bits scaled by 2^-15) and the low
// 4 bits an unsigned power-of-two exponent: value = fraction * 2^exp.
func DecodeFshort(c *Cursor) (float32, error) {
	b, err := c.Take(2)
	if err != nil {
		return 0, truncated("fshort")
	}
	v := binary.BigEndian.Uint16(b)
	fraction := float64(int16(v&0xFFF0)) / float64(1<<15)
	exp := float64(v & 0x000F)
	return float32(fraction * math.Pow(2, exp)), nil
}

// DecodeFsingl reads a 4-byte IEEE 754 single-precision float.
func DecodeFsingl(c *Cursor) (float32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, truncated("fsingl")
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// Fsing1 is fsingl plus one companion IEEE float.
type Fsing1 struct {
	Value float32
	A     float32
}

func DecodeFsing1(c *Cursor) (Fsing1, error) {
	v, err := DecodeFsingl(c)
	if err != nil {
		return Fsing1{}, err
	}
	a, err := DecodeFsingl(c)
	if err != nil {
		return Fsing1{}, err
	}
	return Fsing1{Value: v, A: a}, nil
}

// Fsing2 is fsingl plus two companion IEEE floats.
type Fsing2 struct {
	Value float32
	A     float32
	B     float32
}

func DecodeFsing2(c *Cursor) (Fsing2, error) {
	v, err := DecodeFsingl(c)
	if err != nil {
		return Fsing2{}, err
	}
	a, err := DecodeFsingl(c)
	if err != nil {
		return Fsing2{}, err
	}
	b, err := DecodeFsingl(c)
	if err != nil {
		return Fsing2{}, err
	}
	return Fsing2{Value: v, A: a, B: b}, nil
}

// DecodeIsingl reads an IBM single-precision float and converts it to
// IEEE 754.
func DecodeIsingl(c *Cursor) (float32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, truncated("isingl")
	}
	return ibmToIEEE(binary.BigEndian.Uint32(b)), nil
}

// DecodeVsingl reads a VAX F_floating value and converts it to IEEE 754.
func DecodeVsingl(c *Cursor) (float32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, truncated("vsingl")
	}
	return vaxToIEEE(binary.BigEndian.Uint32(b)), nil
}

// DecodeFdoubl reads an 8-byte IEEE 754 double-precision float.
func DecodeFdoubl(c *Cursor) (float64, error) {
	b, err := c.Take(8)
	if err != nil {
		return 0, truncated("fdoubl")
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

type Fdoub1 struct {
	Value float64
	A     float64
}

func DecodeFdoub1(c *Cursor) (Fdoub1, error) {
	v, err := DecodeFdoubl(c)
	if err != nil {
		return Fdoub1{}, err
	}
	a, err := DecodeFdoubl(c)
	if err != nil {
		return Fdoub1{}, err
	}
	return Fdoub1{Value: v, A: a}, nil
}

type Fdoub2 struct {
	Value float64
	A     float64
	B     float64
}

func DecodeFdoub2(c *Cursor) (Fdoub2, error) {
	v, err := DecodeFdoubl(c)
	if err != nil {
		return Fdoub2{}, err
	}
	a, err := DecodeFdoubl(c)
	if err != nil {
		return Fdoub2{}, err
	}
	b, err := DecodeFdoubl(c)
	if err != nil {
		return Fdoub2{}, err
	}
	return Fdoub2{Value: v, A: a, B: b}, nil
}

// Csingl is a complex number built from two IEEE float32 components.
type Csingl struct {
	Real float32
	Imag float32
}

func DecodeCsingl(c *Cursor) (Csingl, error) {
	re, err := DecodeFsingl(c)
	if err != nil {
		return Csingl{}, err
	}
	im, err := DecodeFsingl(c)
	if err != nil {
		return Csingl{}, err
	}
	return Csingl{Real: re, Imag: im}, nil
}

// Cdoubl is a complex number built from two IEEE float64 components.
type Cdoubl struct {
	Real float64
	Imag float64
}

func DecodeCdoubl(c *Cursor) (Cdoubl, error) {
	re, err := DecodeFdoubl(c)
	if err != nil {
		return Cdoubl{}, err
	}
	im, err := DecodeFdoubl(c)
	if err != nil {
		return Cdoubl{}, err
	}
	return Cdoubl{Real: re, Imag: im}, nil
}

// DecodeSshort reads a signed 8-bit integer.
func DecodeSshort(c *Cursor) (int8, error) {
	b, err := c.TakeByte()
	if err != nil {
		return 0, truncated("sshort")
	}
	return int8(b), nil
}

// DecodeSnorm reads a signed big-endian 16-bit integer.
func DecodeSnorm(c *Cursor) (int16, error) {
	b, err := c.Take(2)
	if err != nil {
		return 0, truncated("snorm")
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// DecodeSlong reads a signed big-endian 32-bit integer.
func DecodeSlong(c *Cursor) (int32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, truncated("slong")
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// DecodeUshort reads an unsigned 8-bit integer.
func DecodeUshort(c *Cursor) (uint8, error) {
	b, err := c.TakeByte()
	if err != nil {
		return 0, truncated("ushort")
	}
	return b, nil
}

// DecodeUnorm reads an unsigned big-endian 16-bit integer.
func DecodeUnorm(c *Cursor) (uint16, error) {
	b, err := c.Take(2)
	if err != nil {
		return 0, truncated("unorm")
	}
	return binary.BigEndian.Uint16(b), nil
}

// DecodeUlong reads an unsigned big-endian 32-bit integer.
func DecodeUlong(c *Cursor) (uint32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, truncated("ulong")
	}
	return binary.BigEndian.Uint32(b), nil
}

// DecodeUvari reads a 1/2/4-byte variable-length unsigned integer.
// The top bits of the first byte select the width:
//
//	0b0x -> 1 byte,  7-bit value
//	0b10 -> 2 bytes, 14-bit value
//	0b11 -> 4 bytes, 30-bit value
func DecodeUvari(c *Cursor) (uint32, error) {
	first, ok := c.Peek(1)
	if !ok {
		return 0, truncated("uvari")
	}
	lead := first[0]

	switch {
	case lead&0x80 == 0: // 0b0x
		b, err := c.TakeByte()
		if err != nil {
			return 0, truncated("uvari")
		}
		return uint32(b & 0x7F), nil
	case lead&0xC0 == 0x80: // 0b10
		b, err := c.Take(2)
		if err != nil {
			return 0, truncated("uvari")
		}
		v := binary.BigEndian.Uint16(b)
		return uint32(v & 0x3FFF), nil
	default: // 0b11
		b, err := c.Take(4)
		if err != nil {
			return 0, truncated("uvari")
		}
		v := binary.BigEndian.Uint32(b)
		return v & 0x3FFFFFFF, nil
	}
}

// EncodeUvari encodes v in the narrowest width that can hold it,
// matching DecodeUvari's width selection.
func EncodeUvari(v uint32) []byte {
	switch {
	case v <= 0x7F:
		return []byte{byte(v)}
	case v <= 0x3FFF:
		out := make([]byte, 2)
		binary.BigEndian.PutUint16(out, uint16(v)|0x8000)
		return out
	default:
		out := make([]byte, 4)
		binary.BigEndian.PutUint32(out, v|0xC0000000)
		return out
	}
}

// DecodeIdent reads a 1-byte length n followed by n raw bytes.
func DecodeIdent(c *Cursor) (string, error) {
	n, err := c.TakeByte()
	if err != nil {
		return "", truncated("ident")
	}
	b, err := c.Take(int(n))
	if err != nil {
		return "", truncated("ident")
	}
	return string(b), nil
}

// DecodeAscii reads a uvari length n followed by n raw bytes.
func DecodeAscii(c *Cursor) (string, error) {
	n, err := DecodeUvari(c)
	if err != nil {
		return "", err
	}
	b, err := c.Take(int(n))
	if err != nil {
		return "", truncated("ascii")
	}
	return string(b), nil
}

// DTime is the 8-byte RP66 V1 date-time representation.
type DTime struct {
	Year         int // calendar year: the wire's years-since-1900 plus 1900
	TZ           uint8
	Month        uint8
	Day          uint8
	Hour         uint8
	Minute       uint8
	Second       uint8
	Milliseconds uint16
}

// DecodeDtime reads year(ushort)+TZ/month(nibbles)+day+hour+minute+
// second+milliseconds(unorm).
func DecodeDtime(c *Cursor) (DTime, error) {
	b, err := c.Take(8)
	if err != nil {
		return DTime{}, truncated("dtime")
	}
	return DTime{
		Year:         1900 + int(b[0]),
		TZ:           b[1] >> 4,
		Month:        b[1] & 0x0F,
		Day:          b[2],
		Hour:         b[3],
		Minute:       b[4],
		Second:       b[5],
		Milliseconds: binary.BigEndian.Uint16(b[6:8]),
	}, nil
}

// DecodeStatus reads a 1-byte boolean-ish status, preserved verbatim
// to distinguish the source encoding (0 = false, anything else = true).
func DecodeStatus(c *Cursor) (uint8, error) {
	b, err := c.TakeByte()
	if err != nil {
		return 0, truncated("status")
	}
	return b, nil
}

// DecodeOrigin reads an origin reference, which is wire-identical to uvari.
func DecodeOrigin(c *Cursor) (uint32, error) {
	v, err := DecodeUvari(c)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// DecodeUnits reads a units value, which is wire-identical to ident.
func DecodeUnits(c *Cursor) (string, error) {
	return DecodeIdent(c)
}

// Obname is a composite origin/copy/id object name.
type Obname struct {
	Origin uint32
	Copy   uint16
	ID     string
}

func DecodeObname(c *Cursor) (Obname, error) {
	origin, err := DecodeUvari(c)
	if err != nil {
		return Obname{}, err
	}
	copyNum, err := DecodeUshort(c)
	if err != nil {
		return Obname{}, truncated("obname.copy")
	}
	id, err := DecodeIdent(c)
	if err != nil {
		return Obname{}, err
	}
	return Obname{Origin: origin, Copy: uint16(copyNum), ID: id}, nil
}

// Objref is an ident (object-set type) plus an obname.
type Objref struct {
	Type string
	Name Obname
}

func DecodeObjref(c *Cursor) (Objref, error) {
	t, err := DecodeIdent(c)
	if err != nil {
		return Objref{}, err
	}
	name, err := DecodeObname(c)
	if err != nil {
		return Objref{}, err
	}
	return Objref{Type: t, Name: name}, nil
}

// Attref is an ident, an obname, and a second ident (attribute label).
type Attref struct {
	Type  string
	Name  Obname
	Label string
}

func DecodeAttref(c *Cursor) (Attref, error) {
	t, err := DecodeIdent(c)
	if err != nil {
		return Attref{}, err
	}
	name, err := DecodeObname(c)
	if err != nil {
		return Attref{}, err
	}
	label, err := DecodeIdent(c)
	if err != nil {
		return Attref{}, err
	}
	return Attref{Type: t, Name: name, Label: label}, nil
}
