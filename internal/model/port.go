package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Direction is the canonical three-way port direction
type Direction string

const (
	DirIn    Direction = "in"
	DirOut   Direction = "out"
	DirInout Direction = "inout"
)

// ParseDirection normalizes HDL direction keywords into the canonical
// direction. Legacy directions map onto the nearest electrical equivalent:
// buffer drives out, linkage reads in. Unknown strings default to in.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "input", "linkage":
		return DirIn
	case "out", "output", "buffer":
		return DirOut
	case "inout":
		return DirInout
	default:
		return DirIn
	}
}

// Width is a port width: either a resolved bit count or a reference to a
// generic whose value is unknown at parse time. Exactly one side is set.
type Width struct {
	Bits  int    `yaml:"-" json:"-"`
	Param string `yaml:"-" json:"-"`
}

// Bits builds a numeric width
func Bits(n int) Width { return Width{Bits: n} }

// Param builds a symbolic width referencing a generic by name
func Param(name string) Width { return Width{Param: name} }

// IsParam reports whether the width is an unresolved generic reference
func (w Width) IsParam() bool { return w.Param != "" }

func (w Width) String() string {
	if w.IsParam() {
		return w.Param
	}
	return fmt.Sprintf("%d", w.Bits)
}

// MarshalYAML emits the width as a plain integer, or as the generic name
// when symbolic, matching the interface description format.
func (w Width) MarshalYAML() (any, error) {
	if w.IsParam() {
		return w.Param, nil
	}
	return w.Bits, nil
}

// UnmarshalYAML accepts either form
func (w *Width) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		if n <= 0 {
			return fmt.Errorf("width must be positive, got %d", n)
		}
		*w = Width{Bits: n}
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("width must be an integer or a generic name: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("width parameter reference cannot be empty")
	}
	*w = Width{Param: s}
	return nil
}

// MarshalJSON mirrors MarshalYAML
func (w Width) MarshalJSON() ([]byte, error) {
	if w.IsParam() {
		return json.Marshal(w.Param)
	}
	return json.Marshal(w.Bits)
}

// UnmarshalJSON mirrors UnmarshalYAML
func (w *Width) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n <= 0 {
			return fmt.Errorf("width must be positive, got %d", n)
		}
		*w = Width{Bits: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("width must be an integer or a generic name")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("width parameter reference cannot be empty")
	}
	*w = Width{Param: s}
	return nil
}

// Port is a module-level signal as declared in the HDL source. Ports are
// produced by the parser and never mutated afterwards.
type Port struct {
	Name      string    `yaml:"name" json:"name"`
	Direction Direction `yaml:"direction" json:"direction"`
	Width     Width     `yaml:"width" json:"width"`
	Type      string    `yaml:"type,omitempty" json:"type,omitempty"`
}

// IsVector reports whether the port spans more than one bit. Symbolic
// widths count as vectors since the referenced generic is sized at
// elaboration time.
func (p Port) IsVector() bool {
	return p.Width.IsParam() || p.Width.Bits > 1
}

// IsInput reports whether the port direction is in
func (p Port) IsInput() bool { return p.Direction == DirIn }

// IsOutput reports whether the port direction is out
func (p Port) IsOutput() bool { return p.Direction == DirOut }
