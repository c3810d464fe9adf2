package model

import (
	"fmt"
	"strings"
)

// VLNV is the four-part vendor:library:name:version identifier used for IP
// cores and bus types.
type VLNV struct {
	Vendor  string `yaml:"vendor" json:"vendor"`
	Library string `yaml:"library" json:"library"`
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// ParseVLNV parses a colon-separated "vendor:library:name:version" string.
// All four parts must be non-empty after trimming.
func ParseVLNV(s string) (VLNV, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return VLNV{}, fmt.Errorf("invalid VLNV %q: expected 4 colon-separated parts, got %d", s, len(parts))
	}
	v := VLNV{
		Vendor:  strings.TrimSpace(parts[0]),
		Library: strings.TrimSpace(parts[1]),
		Name:    strings.TrimSpace(parts[2]),
		Version: strings.TrimSpace(parts[3]),
	}
	for _, p := range []string{v.Vendor, v.Library, v.Name, v.Version} {
		if p == "" {
			return VLNV{}, fmt.Errorf("invalid VLNV %q: empty component", s)
		}
	}
	return v, nil
}

func (v VLNV) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", v.Vendor, v.Library, v.Name, v.Version)
}

// IsZero reports whether no component is set; yaml omitempty honors it
func (v VLNV) IsZero() bool {
	return v == VLNV{}
}
