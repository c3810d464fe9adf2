package model

import "strings"

// Role classifies what a port turned out to be
type Role string

const (
	RoleClock        Role = "clock"
	RoleReset        Role = "reset"
	RoleBus          Role = "bus"
	RoleUnclassified Role = "unclassified"
)

// Module is the canonical, language-agnostic record of one HDL module:
// the full declared interface plus its classification into clocks, resets
// and bus instances. Downstream consumers read this record and never the
// original source text.
type Module struct {
	Name          string         `yaml:"name" json:"name"`
	VLNV          VLNV           `yaml:"vlnv,omitempty" json:"vlnv,omitzero"`
	Generics      []Generic      `yaml:"generics,omitempty" json:"generics,omitempty"`
	Ports         []Port         `yaml:"ports" json:"ports"`
	Clocks        []Clock        `yaml:"clocks,omitempty" json:"clocks,omitempty"`
	Resets        []Reset        `yaml:"resets,omitempty" json:"resets,omitempty"`
	BusInterfaces []BusInterface `yaml:"busInterfaces,omitempty" json:"busInterfaces,omitempty"`
}

// Port looks a port up by name, case-insensitively
func (m *Module) Port(name string) (Port, bool) {
	for _, p := range m.Ports {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Port{}, false
}

// Generic looks a generic up by name, case-insensitively
func (m *Module) Generic(name string) (Generic, bool) {
	for _, g := range m.Generics {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Generic{}, false
}

// Roles maps every port name to its classified role. Classification is a
// partition: clock and reset tags win over bus membership, which wins over
// unclassified, and each name appears exactly once.
func (m *Module) Roles() map[string]Role {
	roles := make(map[string]Role, len(m.Ports))
	for _, p := range m.Ports {
		roles[p.Name] = RoleUnclassified
	}
	assign := func(name string, r Role) {
		for _, p := range m.Ports {
			if strings.EqualFold(p.Name, name) {
				if roles[p.Name] == RoleUnclassified {
					roles[p.Name] = r
				}
				return
			}
		}
	}
	for _, c := range m.Clocks {
		assign(c.Name, RoleClock)
	}
	for _, r := range m.Resets {
		assign(r.Name, RoleReset)
	}
	for _, b := range m.BusInterfaces {
		for _, p := range b.MatchedPorts {
			assign(p.Name, RoleBus)
		}
	}
	return roles
}

// UnclassifiedPorts returns the ports no classifier claimed, in
// declaration order.
func (m *Module) UnclassifiedPorts() []Port {
	roles := m.Roles()
	var out []Port
	for _, p := range m.Ports {
		if roles[p.Name] == RoleUnclassified {
			out = append(out, p)
		}
	}
	return out
}
