// Package pintype implements the closed type-tag set carried by pins and the
// total compatibility function over it. A pin type is one of a fixed set of
// primitives, a list of an element type, or the Any wildcard. There is no
// untyped fallback: every pair of types has a defined answer.
package pintype

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind is the tag discriminating the members of the type set.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindAny
	KindList
)

// Type is an immutable pin type value. The zero Type is invalid; use the
// package variables or List to construct one.
type Type struct {
	kind Kind
	elem *Type
}

var (
	Int     = Type{kind: KindInt}
	Float   = Type{kind: KindFloat}
	Bool    = Type{kind: KindBool}
	String  = Type{kind: KindString}
	Any     = Type{kind: KindAny}
	Invalid = Type{}
)

// List returns the container type holding elements of elem.
func List(elem Type) Type {
	return Type{kind: KindList, elem: &elem}
}

// Kind returns the type's tag.
func (t Type) Kind() Kind { return t.kind }

// Elem returns the element type of a list, or Invalid for non-lists.
func (t Type) Elem() Type {
	if t.kind != KindList || t.elem == nil {
		return Invalid
	}
	return *t.elem
}

// IsAny reports whether t is the wildcard.
func (t Type) IsAny() bool { return t.kind == KindAny }

// IsValid reports whether t is a member of the type set.
func (t Type) IsValid() bool { return t.kind != KindInvalid }

// Equals reports structural equality.
func (t Type) Equals(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	if t.kind == KindList {
		return t.Elem().Equals(o.Elem())
	}
	return true
}

// String renders the type in the same notation Parse accepts.
func (t Type) String() string {
	switch t.kind {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindAny:
		return "any"
	case KindList:
		return "list(" + t.Elem().String() + ")"
	default:
		return "invalid"
	}
}

// Parse is the inverse of String. It is used when decoding snapshots.
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "bool":
		return Bool, nil
	case "string":
		return String, nil
	case "any":
		return Any, nil
	}
	if inner, ok := strings.CutPrefix(s, "list("); ok && strings.HasSuffix(inner, ")") {
		elem, err := Parse(strings.TrimSuffix(inner, ")"))
		if err != nil {
			return Invalid, err
		}
		return List(elem), nil
	}
	return Invalid, fmt.Errorf("unknown pin type %q", s)
}

// Cty maps the type onto its go-cty equivalent, used for carrying default
// pin values and serializing them. Int and Float both map to cty.Number;
// the distinction only matters for connection compatibility, not for values.
func (t Type) Cty() cty.Type {
	switch t.kind {
	case KindInt, KindFloat:
		return cty.Number
	case KindBool:
		return cty.Bool
	case KindString:
		return cty.String
	case KindList:
		return cty.List(t.Elem().Cty())
	default:
		return cty.DynamicPseudoType
	}
}
