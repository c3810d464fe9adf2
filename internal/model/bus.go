package model

// Mode is the role a bus interface plays on the connection. Memory-mapped
// buses use master/slave; streaming buses use source/sink.
type Mode string

const (
	ModeMaster Mode = "master"
	ModeSlave  Mode = "slave"
	ModeSource Mode = "source"
	ModeSink   Mode = "sink"
)

// Initiates reports whether the mode drives transactions (master or source)
func (m Mode) Initiates() bool { return m == ModeMaster || m == ModeSource }

// Responds reports whether the mode answers transactions (slave or sink)
func (m Mode) Responds() bool { return m == ModeSlave || m == ModeSink }

// BusInterface is one detected bus instance: a named group of physical
// ports that together implement a standard interface from the bus library.
// Only the detector produces these.
type BusInterface struct {
	Name           string `yaml:"name" json:"name"`
	Type           string `yaml:"type" json:"type"`
	Mode           Mode   `yaml:"mode" json:"mode"`
	PhysicalPrefix string `yaml:"physicalPrefix" json:"physicalPrefix"`
	MatchedPorts   []Port `yaml:"matchedPorts,omitempty" json:"matchedPorts,omitempty"`
}

// PortNames lists the physical names of the matched ports in order
func (b BusInterface) PortNames() []string {
	names := make([]string, len(b.MatchedPorts))
	for i, p := range b.MatchedPorts {
		names[i] = p.Name
	}
	return names
}
