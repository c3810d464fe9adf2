package model

// Generic is a compile-time parameter of a module (VHDL generic, Verilog
// parameter). The declared type and default are kept verbatim from the
// source; width resolution only ever needs the name.
type Generic struct {
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type,omitempty" json:"type,omitempty"`
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

// HasDefault reports whether the source declared a default value
func (g Generic) HasDefault() bool { return g.Default != "" }
