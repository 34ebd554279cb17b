package xmlrpc

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the type of a decoded XML-RPC value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindDouble
	KindArray
	KindStruct
)

// String returns the XML-RPC element name for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "boolean"
	case KindDouble:
		return "double"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded XML-RPC value. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Str    string
	Int    int64
	Bool   bool
	Double float64
	Array  []Value
	Struct map[string]Value
}

// Member returns the named struct member. The second return is false when
// the value is not a struct or the member is absent.
func (v Value) Member(name string) (Value, bool) {
	if v.Kind != KindStruct {
		return Value{}, false
	}
	m, ok := v.Struct[name]
	return m, ok
}

// StringMember returns a string-typed struct member, or "" if absent.
func (v Value) StringMember(name string) string {
	m, ok := v.Member(name)
	if !ok || m.Kind != KindString {
		return ""
	}
	return m.Str
}

// IntMember returns an int-typed struct member, or 0 if absent.
func (v Value) IntMember(name string) int64 {
	m, ok := v.Member(name)
	if !ok || m.Kind != KindInt {
		return 0
	}
	return m.Int
}

// Wire representation used for decoding methodResponse documents.
// XML-RPC values nest arbitrarily, so these types are recursive.

type xmlMethodResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  *xmlParams `xml:"params"`
	Fault   *xmlFault  `xml:"fault"`
}

type xmlParams struct {
	Params []xmlParam `xml:"param"`
}

type xmlParam struct {
	Value xmlValue `xml:"value"`
}

type xmlFault struct {
	Value xmlValue `xml:"value"`
}

type xmlValue struct {
	Text    string     `xml:",chardata"`
	Str     *string    `xml:"string"`
	Int     *string    `xml:"int"`
	I4      *string    `xml:"i4"`
	Boolean *string    `xml:"boolean"`
	Double  *string    `xml:"double"`
	Struct  *xmlStruct `xml:"struct"`
	Array   *xmlArray  `xml:"array"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

// convertValue maps a wire value to its decoded form.
func convertValue(xv xmlValue) (Value, error) {
	switch {
	case xv.Str != nil:
		return Value{Kind: KindString, Str: *xv.Str}, nil

	case xv.Int != nil, xv.I4 != nil:
		raw := xv.Int
		if raw == nil {
			raw = xv.I4
		}
		n, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid int value %q: %w", *raw, err)
		}
		return Value{Kind: KindInt, Int: n}, nil

	case xv.Boolean != nil:
		switch strings.TrimSpace(*xv.Boolean) {
		case "1":
			return Value{Kind: KindBool, Bool: true}, nil
		case "0":
			return Value{Kind: KindBool, Bool: false}, nil
		default:
			return Value{}, fmt.Errorf("invalid boolean value %q", *xv.Boolean)
		}

	case xv.Double != nil:
		f, err := strconv.ParseFloat(strings.TrimSpace(*xv.Double), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid double value %q: %w", *xv.Double, err)
		}
		return Value{Kind: KindDouble, Double: f}, nil

	case xv.Struct != nil:
		members := make(map[string]Value, len(xv.Struct.Members))
		for _, m := range xv.Struct.Members {
			v, err := convertValue(m.Value)
			if err != nil {
				return Value{}, fmt.Errorf("struct member %q: %w", m.Name, err)
			}
			members[m.Name] = v
		}
		return Value{Kind: KindStruct, Struct: members}, nil

	case xv.Array != nil:
		values := make([]Value, 0, len(xv.Array.Values))
		for i, av := range xv.Array.Values {
			v, err := convertValue(av)
			if err != nil {
				return Value{}, fmt.Errorf("array element %d: %w", i, err)
			}
			values = append(values, v)
		}
		return Value{Kind: KindArray, Array: values}, nil

	default:
		// A value with no type element is a string per the XML-RPC spec.
		// Surrounding whitespace comes from document indentation.
		return Value{Kind: KindString, Str: strings.TrimSpace(xv.Text)}, nil
	}
}
