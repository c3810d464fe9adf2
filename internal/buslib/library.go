package buslib

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/bleviet/ipcraft/internal/model"
)

//go:embed defs/bus_definitions.yml
var embeddedDefs []byte

type Presence string

const (
	Required Presence = "required"
	Optional Presence = "optional"
)

type Kind string

const (
	MemoryMapped Kind = "memory_mapped"
	Streaming    Kind = "streaming"
)

// PortDef is one logical signal of a bus definition. Direction is from
// the master's point of view; width 0 means sized per instance.
type PortDef struct {
	Name      string          `yaml:"name"`
	Direction model.Direction `yaml:"direction"`
	Width     int             `yaml:"width"`
	Presence  Presence        `yaml:"presence"`
}

func (p PortDef) IsRequired() bool { return p.Presence == Required }

// Definition is one bus type: its identity plus the ordered signal
// table. Definitions are immutable once loaded and shared by
// reference across detections.
type Definition struct {
	Key               string
	Description       string
	BusType           model.VLNV
	Kind              Kind
	SuggestedPrefixes map[string]string
	Ports             []PortDef
}

// Port looks a logical signal up by name, case-insensitively.
func (d *Definition) Port(logical string) (PortDef, bool) {
	for _, p := range d.Ports {
		if strings.EqualFold(p.Name, logical) {
			return p, true
		}
	}
	return PortDef{}, false
}

func (d *Definition) RequiredCount() int {
	n := 0
	for _, p := range d.Ports {
		if p.IsRequired() {
			n++
		}
	}
	return n
}

// SuggestedPrefix returns the conventional physical prefix for a mode,
// or empty when the definition does not suggest one.
func (d *Definition) SuggestedPrefix(mode model.Mode) string {
	return d.SuggestedPrefixes[string(mode)]
}

// Library is the read-only bus definition table. Safe for concurrent
// reads once loaded.
type Library struct {
	keys []string
	defs map[string]*Definition
}

// Keys returns the definition keys in declaration order.
func (l *Library) Keys() []string {
	return append([]string(nil), l.keys...)
}

func (l *Library) Len() int { return len(l.keys) }

// Get resolves a key, accepting the aliases NormalizeKey knows about.
func (l *Library) Get(key string) (*Definition, bool) {
	def, ok := l.defs[NormalizeKey(key)]
	return def, ok
}

var keyAliases = map[string]string{
	"AXIL":       "AXI4L",
	"AXI4-LITE":  "AXI4L",
	"AXI4LITE":   "AXI4L",
	"AXI4_LITE":  "AXI4L",
	"AXI-STREAM": "AXIS",
	"AXI4STREAM": "AXIS",
	"AXI4S":      "AXIS",
	"AVMM":       "AVALON_MM",
	"AVALON-MM":  "AVALON_MM",
	"AVST":       "AVALON_ST",
	"AVALON-ST":  "AVALON_ST",
}

// NormalizeKey maps user-facing bus type spellings onto canonical
// definition keys. Unknown keys pass through upper-cased.
func NormalizeKey(key string) string {
	k := strings.ToUpper(strings.TrimSpace(key))
	if canon, ok := keyAliases[k]; ok {
		return canon
	}
	return k
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default returns the library embedded in the binary. The result is
// shared across callers; treat it as read-only.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = Parse(embeddedDefs)
	})
	return defaultLib, defaultErr
}

// Load reads a bus definition table from a YAML file.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bus definitions: %w", err)
	}
	return Parse(data)
}

// Parse builds a Library from YAML, preserving the document's key
// order for scoring ties later.
func Parse(data []byte) (*Library, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing bus definitions: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("bus definitions: empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("bus definitions: top level must be a mapping")
	}

	lib := &Library{defs: make(map[string]*Definition)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := strings.ToUpper(strings.TrimSpace(root.Content[i].Value))

		var entry defEntry
		if err := root.Content[i+1].Decode(&entry); err != nil {
			return nil, fmt.Errorf("bus definition %s: %w", key, err)
		}
		def, err := entry.build(key)
		if err != nil {
			return nil, err
		}
		if _, dup := lib.defs[key]; dup {
			return nil, fmt.Errorf("bus definition %s: duplicate key", key)
		}
		lib.defs[key] = def
		lib.keys = append(lib.keys, key)
	}
	if len(lib.keys) == 0 {
		return nil, fmt.Errorf("bus definitions: no entries")
	}
	return lib, nil
}

type defEntry struct {
	Description       string            `yaml:"description"`
	BusType           vlnvEntry         `yaml:"busType"`
	Kind              Kind              `yaml:"kind"`
	SuggestedPrefixes map[string]string `yaml:"suggestedPrefixes"`
	Ports             []PortDef         `yaml:"ports"`
}

type vlnvEntry struct {
	Vendor  string `yaml:"vendor"`
	Library string `yaml:"library"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func (e defEntry) build(key string) (*Definition, error) {
	if key == "" {
		return nil, fmt.Errorf("bus definition with empty key")
	}
	if len(e.Ports) == 0 {
		return nil, fmt.Errorf("bus definition %s: no ports", key)
	}

	kind := e.Kind
	if kind == "" {
		kind = sniffKind(key)
	}
	if kind != MemoryMapped && kind != Streaming {
		return nil, fmt.Errorf("bus definition %s: unknown kind %q", key, kind)
	}

	seen := make(map[string]bool, len(e.Ports))
	ports := make([]PortDef, 0, len(e.Ports))
	for _, p := range e.Ports {
		p.Name = strings.ToUpper(strings.TrimSpace(p.Name))
		if p.Name == "" {
			return nil, fmt.Errorf("bus definition %s: port with empty name", key)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("bus definition %s: duplicate port %s", key, p.Name)
		}
		seen[p.Name] = true

		switch p.Direction {
		case model.DirIn, model.DirOut, model.DirInout:
		default:
			return nil, fmt.Errorf("bus definition %s: port %s has unknown direction %q", key, p.Name, p.Direction)
		}
		if p.Presence == "" {
			p.Presence = Required
		}
		if p.Presence != Required && p.Presence != Optional {
			return nil, fmt.Errorf("bus definition %s: port %s has unknown presence %q", key, p.Name, p.Presence)
		}
		if p.Width < 0 {
			return nil, fmt.Errorf("bus definition %s: port %s has negative width", key, p.Name)
		}
		ports = append(ports, p)
	}

	return &Definition{
		Key:         key,
		Description: e.Description,
		BusType: model.VLNV{
			Vendor:  e.BusType.Vendor,
			Library: e.BusType.Library,
			Name:    e.BusType.Name,
			Version: e.BusType.Version,
		},
		Kind:              kind,
		SuggestedPrefixes: e.SuggestedPrefixes,
		Ports:             ports,
	}, nil
}

// sniffKind guesses streaming vs memory mapped from the key when an
// entry does not say.
func sniffKind(key string) Kind {
	k := strings.ToLower(key)
	if strings.Contains(k, "axis") || strings.Contains(k, "stream") || strings.HasSuffix(k, "_st") {
		return Streaming
	}
	return MemoryMapped
}
