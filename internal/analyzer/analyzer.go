// Package analyzer runs the front-end pipeline over HDL sources: parse
// the module declaration, classify clocks and resets, detect bus
// interfaces against the definition library and validate the assembled
// canonical record.
package analyzer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bleviet/ipcraft/internal/buslib"
	"github.com/bleviet/ipcraft/internal/config"
	"github.com/bleviet/ipcraft/internal/detect"
	"github.com/bleviet/ipcraft/internal/hdl"
	"github.com/bleviet/ipcraft/internal/model"
	"github.com/bleviet/ipcraft/internal/validator"
)

// Analyzer ties the pipeline stages together under one configuration.
type Analyzer struct {
	cfg      *config.Config
	lib      *buslib.Library
	detector *detect.Detector
	modval   *validator.ModuleValidator
	logger   zerolog.Logger
}

// New builds an analyzer from the configuration. An empty bus library
// path selects the embedded definitions; a configured one is schema
// checked before use.
func New(cfg *config.Config, logger zerolog.Logger) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	lib, err := loadLibrary(cfg.Buses.Library)
	if err != nil {
		return nil, err
	}

	modval, err := validator.NewModuleValidator()
	if err != nil {
		return nil, fmt.Errorf("module validator: %w", err)
	}

	detector := detect.New(lib, detect.Options{
		MinRequiredRatio: cfg.Detection.MinRequiredRatio,
		TieBreak:         detect.TieBreak(cfg.Detection.TieBreak),
	}, logger)

	return &Analyzer{
		cfg:      cfg,
		lib:      lib,
		detector: detector,
		modval:   modval,
		logger:   logger,
	}, nil
}

// Library returns the bus definition library the analyzer matches
// against.
func (a *Analyzer) Library() *buslib.Library { return a.lib }

func loadLibrary(path string) (*buslib.Library, error) {
	if path == "" {
		return buslib.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bus library: %w", err)
	}
	libval, err := validator.NewLibraryValidator()
	if err != nil {
		return nil, fmt.Errorf("library validator: %w", err)
	}
	if err := libval.ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("bus library %s: %w", path, err)
	}
	return buslib.Parse(data)
}

// Report is the outcome of analyzing one source file: the canonical
// module record plus everything worth knowing about how it was
// recovered. Error is set instead of Module when the file could not be
// analyzed at all.
type Report struct {
	Path         string             `yaml:"path,omitempty" json:"path,omitempty"`
	Module       *model.Module      `yaml:"module,omitempty" json:"module,omitempty"`
	Diagnostics  hdl.Diagnostics    `yaml:"diagnostics" json:"diagnostics"`
	Unclassified []string           `yaml:"unclassifiedPorts,omitempty" json:"unclassifiedPorts,omitempty"`
	Candidates   []detect.Candidate `yaml:"busCandidates,omitempty" json:"busCandidates,omitempty"`
	Error        string             `yaml:"error,omitempty" json:"error,omitempty"`
}

// AnalyzeFile reads and analyzes one HDL source file.
func (a *Analyzer) AnalyzeFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rep, err := a.AnalyzeSource(path, string(data))
	if err != nil {
		return nil, err
	}
	rep.Path = path
	return rep, nil
}

// AnalyzeSource analyzes HDL source text. The name only steers language
// detection and may be empty, in which case the source is sniffed.
func (a *Analyzer) AnalyzeSource(name, source string) (*Report, error) {
	parser := hdl.NewParser(hdl.Options{
		Language:        hdl.DetectLanguage(name, source),
		MaxSourceBytes:  a.cfg.Parser.MaxSourceBytes,
		MaxNestingDepth: a.cfg.Parser.MaxNestingDepth,
	})
	res, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	mod := res.Module
	mod.Clocks, mod.Resets = detect.ClassifyClocksResets(mod.Ports)

	claimed := make(map[string]bool, len(mod.Clocks)+len(mod.Resets))
	for _, c := range mod.Clocks {
		claimed[strings.ToLower(c.Name)] = true
	}
	for _, r := range mod.Resets {
		claimed[strings.ToLower(r.Name)] = true
	}
	remaining := make([]model.Port, 0, len(mod.Ports))
	for _, p := range mod.Ports {
		if !claimed[strings.ToLower(p.Name)] {
			remaining = append(remaining, p)
		}
	}

	det := a.detector.Detect(remaining)
	mod.BusInterfaces = det.Interfaces

	if err := a.modval.Validate(mod); err != nil {
		return nil, fmt.Errorf("record for %s failed validation: %w", mod.Name, err)
	}

	var unclassified []string
	for _, p := range mod.UnclassifiedPorts() {
		unclassified = append(unclassified, p.Name)
	}

	if res.Diagnostics.Tier == hdl.TierFallback {
		a.logger.Warn().
			Str("module", mod.Name).
			Str("grammarErr", res.Diagnostics.GrammarErr).
			Int("skippedItems", len(res.Diagnostics.Skipped)).
			Msg("module recovered by fallback extraction")
	}

	a.logger.Debug().
		Str("module", mod.Name).
		Str("language", string(res.Diagnostics.Language)).
		Str("tier", res.Diagnostics.Tier).
		Int("ports", len(mod.Ports)).
		Int("clocks", len(mod.Clocks)).
		Int("resets", len(mod.Resets)).
		Int("busInterfaces", len(mod.BusInterfaces)).
		Int("unclassified", len(unclassified)).
		Msg("module analyzed")

	return &Report{
		Module:       mod,
		Diagnostics:  res.Diagnostics,
		Unclassified: unclassified,
		Candidates:   det.Candidates,
	}, nil
}
