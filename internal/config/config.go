package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for ipcraft
type Config struct {
	// Buses configures the bus definition library
	Buses BusesConfig `yaml:"buses,omitempty"`

	// Detection tunes bus interface matching
	Detection DetectionConfig `yaml:"detection,omitempty"`

	// Parser bounds parser resource usage
	Parser ParserConfig `yaml:"parser,omitempty"`

	// Scan controls source discovery and parallelism
	Scan ScanConfig `yaml:"scan,omitempty"`

	// Log configures diagnostic logging
	Log LogConfig `yaml:"log,omitempty"`
}

// BusesConfig selects the bus definition table
type BusesConfig struct {
	// Library is a path to a bus definition YAML file; empty uses the
	// table embedded in the binary
	Library string `yaml:"library,omitempty"`
}

// DetectionConfig tunes bus interface matching
type DetectionConfig struct {
	// MinRequiredRatio is the fraction of a definition's required
	// signals a prefix group must cover; 0 keeps the built-in 0.7
	MinRequiredRatio float64 `yaml:"minRequiredRatio,omitempty"`

	// TieBreak resolves equal-score matches: "declaration" or "lexical"
	TieBreak string `yaml:"tieBreak,omitempty"`
}

// ParserConfig bounds parser resource usage
type ParserConfig struct {
	// MaxSourceBytes caps the size of one source file (0 = built-in cap)
	MaxSourceBytes int `yaml:"maxSourceBytes,omitempty"`

	// MaxNestingDepth caps parenthesis nesting in declarations
	MaxNestingDepth int `yaml:"maxNestingDepth,omitempty"`
}

// ScanConfig controls source discovery
type ScanConfig struct {
	// Include is the set of glob patterns, ** supported, selecting HDL
	// sources under a scan root
	Include []string `yaml:"include,omitempty"`

	// IgnorePatterns is a list of file patterns to skip entirely
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// MaxParallelFiles limits concurrent file processing (0 = auto)
	MaxParallelFiles int `yaml:"maxParallelFiles,omitempty"`
}

// LogConfig configures diagnostic logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level,omitempty"`

	// Format is "console" or "json"
	Format string `yaml:"format,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			MinRequiredRatio: 0.7,
			TieBreak:         "declaration",
		},
		Parser: ParserConfig{
			MaxSourceBytes:  8 << 20,
			MaxNestingDepth: 64,
		},
		Scan: ScanConfig{
			Include:          []string{"**/*.vhd", "**/*.vhdl", "**/*.v", "**/*.sv"},
			MaxParallelFiles: 0, // auto
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./ipcraft.yml (current working directory)
//  2. ./.ipcraft.yml (current working directory)
//  3. <rootPath>/ipcraft.yml, <rootPath>/.ipcraft.yml (if different from cwd)
//  4. ~/.config/ipcraft/config.yml
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "ipcraft.yml"),
		filepath.Join(cwd, ".ipcraft.yml"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "ipcraft.yml"),
				filepath.Join(rootPath, ".ipcraft.yml"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "ipcraft", "config.yml"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Detection.MinRequiredRatio == 0 {
		c.Detection.MinRequiredRatio = 0.7
	}
	if c.Detection.TieBreak == "" {
		c.Detection.TieBreak = "declaration"
	}

	if c.Parser.MaxSourceBytes == 0 {
		c.Parser.MaxSourceBytes = 8 << 20
	}
	if c.Parser.MaxNestingDepth == 0 {
		c.Parser.MaxNestingDepth = 64
	}

	if len(c.Scan.Include) == 0 {
		c.Scan.Include = []string{"**/*.vhd", "**/*.vhdl", "**/*.v", "**/*.sv"}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ShouldIgnoreFile checks if a file should be skipped entirely
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	for _, pattern := range c.Scan.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(filePath)); matched {
			return true
		}
	}
	return false
}
