// Package eflr implements the object-set parser: given one
// reassembled, unencrypted, explicit-format record body, it decodes
// the set header, the attribute template, and the object list,
// applying template inheritance to each object's attributes.
package eflr

import (
	"github.com/rp66v1/dlis/internal/dlerrors"
	"github.com/rp66v1/dlis/internal/wire"
)

const op = "eflr"

// Descriptor bit layout shared by template attributes and object
// attributes. Bit 7 is the only bit whose meaning differs between the
// two contexts: at the top of the attribute stream it marks "this is
// an object header, not an attribute descriptor", ending the
// template. Within an object's attribute list it never appears (an
// object's attributes are always plain attribute descriptors).
const (
	bitIsObjectHeader = 0x80
	bitInvariant      = 0x40
	bitAbsent         = 0x20
	bitLabel          = 0x10
	bitCount          = 0x08
	bitReprc          = 0x04
	bitUnits          = 0x02
	bitValue          = 0x01
)

// SetHeader identifies the object-set's declared type and name.
type SetHeader struct {
	Type string
	Name string
}

// TemplateAttribute is one positional slot in the template: the
// defaults an object's attribute at the same index falls back to when
// its own presence mask omits a field.
type TemplateAttribute struct {
	Invariant bool
	Absent    bool
	Label     string
	Count     uint32
	Reprc     wire.Code
	Units     string
	Values    []wire.Value
}

// Attribute is one fully-resolved object attribute: every field
// already has template inheritance applied.
type Attribute struct {
	Label  string
	Count  uint32
	Reprc  wire.Code
	Units  string
	Values []wire.Value
	Absent bool
}

// Object is one decoded object: its name and its resolved attributes.
type Object struct {
	Name       wire.Obname
	Attributes []Attribute
}

// ObjectSet is the fully decoded result of parsing one explicit-format
// record body.
type ObjectSet struct {
	Header        SetHeader
	Template      []TemplateAttribute
	Objects       []Object
	ByFingerprint map[string]*Object
}

// Fingerprint renders the canonical, byte-exact identity of an object
// within a set of the given type: type, id, origin, and copy, each
// length- or width-prefixed the way ident/uvari frame their payloads
// on the wire, so the result is safe to use as a hash key and stable
// across runs.
func Fingerprint(typ string, name wire.Obname) string {
	b := make([]byte, 0, len(typ)+len(name.ID)+8)
	b = append(b, byte(len(typ)))
	b = append(b, typ...)
	b = append(b, byte(len(name.ID)))
	b = append(b, name.ID...)
	b = append(b, wire.EncodeUvari(name.Origin)...)
	b = append(b, byte(name.Copy))
	return string(b)
}

// Parse decodes one object-set from a reassembled record body.
func Parse(body []byte) (ObjectSet, error) {
	c := wire.NewCursor(body)

	header, err := parseSetHeader(c)
	if err != nil {
		return ObjectSet{}, err
	}

	template, err := parseTemplate(c)
	if err != nil {
		return ObjectSet{}, err
	}

	var objects []Object
	byFingerprint := make(map[string]*Object)
	for !c.AtEnd() {
		obj, err := parseObject(c, template)
		if err != nil {
			return ObjectSet{}, err
		}
		objects = append(objects, obj)
	}
	for i := range objects {
		byFingerprint[Fingerprint(header.Type, objects[i].Name)] = &objects[i]
	}

	return ObjectSet{Header: header, Template: template, Objects: objects, ByFingerprint: byFingerprint}, nil
}

func parseSetHeader(c *wire.Cursor) (SetHeader, error) {
	attrByte, err := c.TakeByte()
	if err != nil {
		return SetHeader{}, dlerrors.New(dlerrors.KindTruncated, op, "set header: missing attribute byte")
	}
	const hasType = 0x80
	const hasName = 0x40
	if attrByte&hasType == 0 || attrByte&hasName == 0 {
		return SetHeader{}, dlerrors.New(dlerrors.KindInconsistent, op, "set header must declare both type and name")
	}
	typ, err := wire.DecodeIdent(c)
	if err != nil {
		return SetHeader{}, err
	}
	name, err := wire.DecodeIdent(c)
	if err != nil {
		return SetHeader{}, err
	}
	return SetHeader{Type: typ, Name: name}, nil
}

// parseTemplate reads template attribute descriptors until it finds
// one with the object-header bit set, leaving the cursor positioned
// at that byte for parseObject to pick up.
func parseTemplate(c *wire.Cursor) ([]TemplateAttribute, error) {
	var template []TemplateAttribute
	for {
		peeked, ok := c.Peek(1)
		if !ok {
			return nil, dlerrors.New(dlerrors.KindTruncated, op, "template: ran out of bytes before any object")
		}
		if peeked[0]&bitIsObjectHeader != 0 {
			return template, nil
		}

		descByte, _ := c.TakeByte()
		// Fields the descriptor omits take the RP66 component
		// defaults: count 1, representation code ident.
		attr := TemplateAttribute{
			Invariant: descByte&bitInvariant != 0,
			Absent:    descByte&bitAbsent != 0,
			Count:     1,
			Reprc:     wire.IDENT,
		}
		if descByte&bitLabel != 0 {
			label, err := wire.DecodeIdent(c)
			if err != nil {
				return nil, err
			}
			attr.Label = label
		}
		if descByte&bitCount != 0 {
			n, err := wire.DecodeUvari(c)
			if err != nil {
				return nil, err
			}
			attr.Count = n
		}
		if descByte&bitReprc != 0 {
			r, err := wire.DecodeUshort(c)
			if err != nil {
				return nil, err
			}
			attr.Reprc = wire.Code(r)
			if !attr.Reprc.Valid() {
				return nil, dlerrors.New(dlerrors.KindUnexpectedValue, op, "template attribute reprc out of range")
			}
		}
		if descByte&bitUnits != 0 {
			u, err := wire.DecodeIdent(c)
			if err != nil {
				return nil, err
			}
			attr.Units = u
		}
		if descByte&bitValue != 0 {
			vals, err := wire.DecodeN(attr.Reprc, c, int(attr.Count))
			if err != nil {
				return nil, err
			}
			attr.Values = vals
		}
		template = append(template, attr)
	}
}

func parseObject(c *wire.Cursor, template []TemplateAttribute) (Object, error) {
	hdr, err := c.TakeByte()
	if err != nil {
		return Object{}, dlerrors.New(dlerrors.KindTruncated, op, "object: missing header byte")
	}
	if hdr&bitIsObjectHeader == 0 {
		return Object{}, dlerrors.New(dlerrors.KindInconsistent, op, "expected object header byte")
	}
	name, err := wire.DecodeObname(c)
	if err != nil {
		return Object{}, err
	}

	attrs := make([]Attribute, 0, len(template))
	for i := 0; i < len(template); i++ {
		// An object may stop short of the full template width: the
		// next byte already belongs to the next object, or the body
		// simply ends. Remaining slots inherit the template wholesale.
		if peeked, ok := c.Peek(1); !ok || peeked[0]&bitIsObjectHeader != 0 {
			for ; i < len(template); i++ {
				attrs = append(attrs, fromTemplate(template[i]))
			}
			break
		}
		attr, err := parseObjectAttribute(c, template[i])
		if err != nil {
			return Object{}, err
		}
		attrs = append(attrs, attr)
	}
	return Object{Name: name, Attributes: attrs}, nil
}

// fromTemplate materialises an attribute that is entirely defaulted
// from its template slot.
func fromTemplate(tmpl TemplateAttribute) Attribute {
	return Attribute{
		Label:  tmpl.Label,
		Count:  tmpl.Count,
		Reprc:  tmpl.Reprc,
		Units:  tmpl.Units,
		Values: tmpl.Values,
		Absent: tmpl.Absent,
	}
}

// parseObjectAttribute decodes one object attribute descriptor and
// resolves any field the descriptor's presence mask omits against
// the template slot at the same position.
func parseObjectAttribute(c *wire.Cursor, tmpl TemplateAttribute) (Attribute, error) {
	descByte, err := c.TakeByte()
	if err != nil {
		return Attribute{}, dlerrors.New(dlerrors.KindTruncated, op, "object attribute: missing descriptor byte")
	}

	result := fromTemplate(tmpl)
	result.Absent = descByte&bitAbsent != 0
	if result.Absent {
		return result, nil
	}

	if descByte&bitLabel != 0 {
		label, err := wire.DecodeIdent(c)
		if err != nil {
			return Attribute{}, err
		}
		result.Label = label
	}
	if descByte&bitCount != 0 {
		n, err := wire.DecodeUvari(c)
		if err != nil {
			return Attribute{}, err
		}
		result.Count = n
	}
	if descByte&bitReprc != 0 {
		r, err := wire.DecodeUshort(c)
		if err != nil {
			return Attribute{}, err
		}
		result.Reprc = wire.Code(r)
		if !result.Reprc.Valid() {
			return Attribute{}, dlerrors.New(dlerrors.KindUnexpectedValue, op, "object attribute reprc out of range")
		}
	}
	if descByte&bitUnits != 0 {
		u, err := wire.DecodeIdent(c)
		if err != nil {
			return Attribute{}, err
		}
		result.Units = u
	}
	if descByte&bitValue != 0 {
		vals, err := wire.DecodeN(result.Reprc, c, int(result.Count))
		if err != nil {
			return Attribute{}, err
		}
		result.Values = vals
	}
	return result, nil
}
