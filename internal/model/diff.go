package model

// Delta captures interface changes between two canonical records of the
// same module. A changed entry appears on both sides: removal of the old
// row plus addition of the new one.
type Delta struct {
	Added   Changes `yaml:"added" json:"added"`
	Removed Changes `yaml:"removed" json:"removed"`
}

// Changes is one side of a delta
type Changes struct {
	Ports         []Port         `yaml:"ports" json:"ports"`
	Generics      []Generic      `yaml:"generics" json:"generics"`
	Clocks        []Clock        `yaml:"clocks" json:"clocks"`
	Resets        []Reset        `yaml:"resets" json:"resets"`
	BusInterfaces []BusInterface `yaml:"busInterfaces" json:"busInterfaces"`
}

// ComputeDelta computes row-level additions and removals between two
// snapshots of a module's interface.
func ComputeDelta(prev, next *Module) Delta {
	return Delta{
		Added:   diffModules(prev, next),
		Removed: diffModules(next, prev),
	}
}

// Empty reports whether nothing changed
func (d Delta) Empty() bool {
	return d.Added.empty() && d.Removed.empty()
}

func (c Changes) empty() bool {
	return len(c.Ports) == 0 && len(c.Generics) == 0 && len(c.Clocks) == 0 &&
		len(c.Resets) == 0 && len(c.BusInterfaces) == 0
}

func diffModules(from, to *Module) Changes {
	out := emptyChanges()

	out.Ports = diffRows(from.Ports, to.Ports, func(p Port) string {
		return p.Name + "|" + string(p.Direction) + "|" + p.Width.String() + "|" + p.Type
	})
	out.Generics = diffRows(from.Generics, to.Generics, func(g Generic) string {
		return g.Name + "|" + g.Type + "|" + g.Default
	})
	out.Clocks = diffRows(from.Clocks, to.Clocks, func(c Clock) string {
		return c.Name + "|" + c.Frequency
	})
	out.Resets = diffRows(from.Resets, to.Resets, func(r Reset) string {
		return r.Name + "|" + string(r.Polarity)
	})
	out.BusInterfaces = diffRows(from.BusInterfaces, to.BusInterfaces, func(b BusInterface) string {
		return b.Name + "|" + b.Type + "|" + string(b.Mode) + "|" + b.PhysicalPrefix
	})

	return out
}

func emptyChanges() Changes {
	return Changes{
		Ports:         []Port{},
		Generics:      []Generic{},
		Clocks:        []Clock{},
		Resets:        []Reset{},
		BusInterfaces: []BusInterface{},
	}
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}
