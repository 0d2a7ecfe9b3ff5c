package wire

import "fmt"

// Value is a decoded representation-code value: a closed sum type
// dispatched on Code, carrying whichever decayed Go payload that code
// produces (float32/float64/int*/uint*/string/DTime/Obname/...).
type Value struct {
	Code    Code
	payload any
}

func (v Value) Raw() any { return v.payload }

func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.Code, v.payload)
}

// Decode dispatches on code and decodes exactly one value from c.
func Decode(code Code, c *Cursor) (Value, error) {
	switch code {
	case FSHORT:
		v, err := DecodeFshort(c)
		return Value{Code: code, payload: v}, err
	case FSINGL:
		v, err := DecodeFsingl(c)
		return Value{Code: code, payload: v}, err
	case FSING1:
		v, err := DecodeFsing1(c)
		return Value{Code: code, payload: v}, err
	case FSING2:
		v, err := DecodeFsing2(c)
		return Value{Code: code, payload: v}, err
	case ISINGL:
		v, err := DecodeIsingl(c)
		return Value{Code: code, payload: v}, err
	case VSINGL:
		v, err := DecodeVsingl(c)
		return Value{Code: code, payload: v}, err
	case FDOUBL:
		v, err := DecodeFdoubl(c)
		return Value{Code: code, payload: v}, err
	case FDOUB1:
		v, err := DecodeFdoub1(c)
		return Value{Code: code, payload: v}, err
	case FDOUB2:
		v, err := DecodeFdoub2(c)
		return Value{Code: code, payload: v}, err
	case CSINGL:
		v, err := DecodeCsingl(c)
		return Value{Code: code, payload: v}, err
	case CDOUBL:
		v, err := DecodeCdoubl(c)
		return Value{Code: code, payload: v}, err
	case SSHORT:
		v, err := DecodeSshort(c)
		return Value{Code: code, payload: v}, err
	case SNORM:
		v, err := DecodeSnorm(c)
		return Value{Code: code, payload: v}, err
	case SLONG:
		v, err := DecodeSlong(c)
		return Value{Code: code, payload: v}, err
	case USHORT:
		v, err := DecodeUshort(c)
		return Value{Code: code, payload: v}, err
	case UNORM:
		v, err := DecodeUnorm(c)
		return Value{Code: code, payload: v}, err
	case ULONG:
		v, err := DecodeUlong(c)
		return Value{Code: code, payload: v}, err
	case UVARI:
		v, err := DecodeUvari(c)
		return Value{Code: code, payload: v}, err
	case IDENT:
		v, err := DecodeIdent(c)
		return Value{Code: code, payload: v}, err
	case ASCII:
		v, err := DecodeAscii(c)
		return Value{Code: code, payload: v}, err
	case DTIME:
		v, err := DecodeDtime(c)
		return Value{Code: code, payload: v}, err
	case ORIGIN:
		v, err := DecodeOrigin(c)
		return Value{Code: code, payload: v}, err
	case STATUS:
		v, err := DecodeStatus(c)
		return Value{Code: code, payload: v}, err
	case UNITS:
		v, err := DecodeUnits(c)
		return Value{Code: code, payload: v}, err
	case OBNAME:
		v, err := DecodeObname(c)
		return Value{Code: code, payload: v}, err
	case OBJREF:
		v, err := DecodeObjref(c)
		return Value{Code: code, payload: v}, err
	case ATTREF:
		v, err := DecodeAttref(c)
		return Value{Code: code, payload: v}, err
	default:
		return Value{}, unexpectedCode(code)
	}
}

// DecodeN decodes count consecutive values of the same code from c.
func DecodeN(code Code, c *Cursor, count int) ([]Value, error) {
	if count < 0 {
		return nil, nil
	}
	out := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		v, err := Decode(code, c)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
