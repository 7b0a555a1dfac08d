// Package signature defines the descriptor format consumed by node creation.
// Descriptors arrive from an upstream producer (a code-analysis collaborator
// or the manifest loader); this package only defines their shape and the
// structural checks applied before a node is generated from one.
package signature

import (
	"fmt"

	"github.com/vk/flowgraph/internal/pintype"
	"github.com/zclconf/go-cty/cty"
)

// Direction distinguishes consuming pins from producing pins.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "input":
		return Input, nil
	case "output":
		return Output, nil
	default:
		return Input, fmt.Errorf("unknown pin direction %q", s)
	}
}

// PinDecl declares one pin of a signature. A missing declared type means the
// pin accepts or produces anything.
type PinDecl struct {
	Name      string
	Type      pintype.Type
	Direction Direction
	// Default optionally carries a literal value for an unconnected input.
	// The graph core treats it as opaque payload for the execution
	// collaborator; it round-trips through snapshots.
	Default *cty.Value
}

// Descriptor is an ordered list of pin declarations. Order is significant:
// node pins are generated and displayed in declaration order.
type Descriptor struct {
	Pins []PinDecl
}

// New builds a descriptor from declarations in order.
func New(pins ...PinDecl) Descriptor {
	return Descriptor{Pins: pins}
}

// In declares an input pin.
func In(name string, typ pintype.Type) PinDecl {
	return PinDecl{Name: name, Type: typ, Direction: Input}
}

// Out declares an output pin.
func Out(name string, typ pintype.Type) PinDecl {
	return PinDecl{Name: name, Type: typ, Direction: Output}
}

// Inputs returns the input declarations in order.
func (d Descriptor) Inputs() []PinDecl { return d.byDirection(Input) }

// Outputs returns the output declarations in order.
func (d Descriptor) Outputs() []PinDecl { return d.byDirection(Output) }

func (d Descriptor) byDirection(dir Direction) []PinDecl {
	var out []PinDecl
	for _, p := range d.Pins {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the descriptor's internal consistency. Pin names must be
// non-empty and unique across the whole descriptor (signature regeneration
// diffs pins by name, so a name shared between an input and an output would
// be ambiguous), and defaults are only meaningful on inputs.
func (d Descriptor) Validate() error {
	seen := make(map[string]struct{}, len(d.Pins))
	for _, p := range d.Pins {
		if p.Name == "" {
			return fmt.Errorf("descriptor contains a pin with an empty name")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate pin name %q in descriptor", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Default != nil && p.Direction == Output {
			return fmt.Errorf("output pin %q cannot declare a default value", p.Name)
		}
	}
	return nil
}

// Normalize returns a copy with unset pin types replaced by Any, matching the
// contract that a descriptor without a declared type means "anything".
func (d Descriptor) Normalize() Descriptor {
	pins := make([]PinDecl, len(d.Pins))
	copy(pins, d.Pins)
	for i := range pins {
		if !pins[i].Type.IsValid() {
			pins[i].Type = pintype.Any
		}
	}
	return Descriptor{Pins: pins}
}
