package wire

import "github.com/rp66v1/dlis/internal/dlerrors"

// FormatChar is one field of a Pack format string.
type FormatChar byte

// Format characters recognised by ParseFormat. Chosen to read like a
// scaled-down struct-pack alphabet: 'L' for the variable-length uvari
// index type, 'i'/'I' for signed/unsigned 32-bit, 's' for a short
// ident string, and so on through the representation codes that have
// a fixed wire width.
const (
	FieldUvari   FormatChar = 'L'
	FieldInt32   FormatChar = 'i'
	FieldUint32  FormatChar = 'I'
	FieldInt16   FormatChar = 'h'
	FieldUint16  FormatChar = 'H'
	FieldInt8    FormatChar = 'b'
	FieldUint8   FormatChar = 'B'
	FieldFloat32 FormatChar = 'f'
	FieldFloat64 FormatChar = 'd'
	FieldIdent   FormatChar = 's'
	FieldAscii   FormatChar = 'a'
)

var fixedSizes = map[FormatChar]int{
	FieldInt32: 4, FieldUint32: 4,
	FieldInt16: 2, FieldUint16: 2,
	FieldInt8: 1, FieldUint8: 1,
	FieldFloat32: 4, FieldFloat64: 8,
}

// Format describes one parsed Pack format string.
type Format struct {
	Fields   []FormatChar
	Variable bool // true if any field has data-dependent width (uvari, ident, ascii)
}

// ParseFormat validates a format string and reports whether its total
// wire size is data-dependent. It never reads any data; SrcSize is
// only meaningful when Variable is false.
func ParseFormat(format string) (Format, error) {
	fields := make([]FormatChar, 0, len(format))
	variable := false
	for i := 0; i < len(format); i++ {
		fc := FormatChar(format[i])
		switch fc {
		case FieldUvari, FieldIdent, FieldAscii:
			variable = true
		case FieldInt32, FieldUint32, FieldInt16, FieldUint16,
			FieldInt8, FieldUint8, FieldFloat32, FieldFloat64:
			// fixed width, nothing to flag
		default:
			return Format{}, dlerrors.New(dlerrors.KindInvalidArgument, "wire.pack",
				"invalid format character: "+string(fc))
		}
		fields = append(fields, fc)
	}
	return Format{Fields: fields, Variable: variable}, nil
}

// SrcSize returns the fixed number of source bytes the format
// consumes. It is only valid when f.Variable is false; callers must
// check that first.
func (f Format) SrcSize() int {
	total := 0
	for _, fc := range f.Fields {
		total += fixedSizes[fc]
	}
	return total
}

// Unpack translates one packed source buffer into a slice of decoded
// Go values, one per format field, in a single forward pass. It fails
// with KindTruncated if src runs out before every field is read, and
// with KindInvalidArgument if the format itself is malformed.
func Unpack(format string, src []byte) ([]any, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	c := NewCursor(src)
	out := make([]any, 0, len(f.Fields))
	for _, fc := range f.Fields {
		v, err := unpackField(fc, c)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

func unpackField(fc FormatChar, c *Cursor) (any, error) {
	switch fc {
	case FieldUvari:
		return DecodeUvari(c)
	case FieldInt32:
		return DecodeSlong(c)
	case FieldUint32:
		return DecodeUlong(c)
	case FieldInt16:
		return DecodeSnorm(c)
	case FieldUint16:
		return DecodeUnorm(c)
	case FieldInt8:
		return DecodeSshort(c)
	case FieldUint8:
		return DecodeUshort(c)
	case FieldFloat32:
		return DecodeFsingl(c)
	case FieldFloat64:
		return DecodeFdoubl(c)
	case FieldIdent:
		return DecodeIdent(c)
	case FieldAscii:
		return DecodeAscii(c)
	default:
		return nil, dlerrors.New(dlerrors.KindInvalidArgument, "wire.pack", "invalid format character")
	}
}
