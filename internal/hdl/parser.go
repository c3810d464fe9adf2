package hdl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bleviet/ipcraft/internal/model"
)

var (
	// ErrNoModuleFound means the source contains no recognizable
	// module or entity declaration at all.
	ErrNoModuleFound = errors.New("no module declaration found")

	// ErrLimitExceeded means the source tripped a resource cap.
	ErrLimitExceeded = errors.New("input limit exceeded")
)

const (
	TierGrammar  = "grammar"
	TierFallback = "fallback"
)

const (
	defaultMaxSourceBytes  = 8 << 20
	defaultMaxNestingDepth = 64
)

// Options configures a Parser. Zero values select detection from the
// file path and the default resource caps.
type Options struct {
	Language        Language
	MaxSourceBytes  int
	MaxNestingDepth int
}

type Parser struct {
	opts Options
}

func NewParser(opts Options) *Parser {
	if opts.MaxSourceBytes <= 0 {
		opts.MaxSourceBytes = defaultMaxSourceBytes
	}
	if opts.MaxNestingDepth <= 0 {
		opts.MaxNestingDepth = defaultMaxNestingDepth
	}
	return &Parser{opts: opts}
}

// Diagnostics describes how the parse went: which tier produced the
// module and everything that had to be skipped or guessed on the way.
type Diagnostics struct {
	Language          Language      `yaml:"language" json:"language"`
	Tier              string        `yaml:"tier" json:"tier"`
	GrammarErr        string        `yaml:"grammarErr,omitempty" json:"grammarErr,omitempty"`
	Skipped           []SkippedItem `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	UnresolvedWidths  []string      `yaml:"unresolvedWidths,omitempty" json:"unresolvedWidths,omitempty"`
	DegradedWidths    []string      `yaml:"degradedWidths,omitempty" json:"degradedWidths,omitempty"`
	AdditionalModules []string      `yaml:"additionalModules,omitempty" json:"additionalModules,omitempty"`
}

// Confident reports whether the grammar tier produced the module with
// nothing skipped and no width guesswork.
func (d Diagnostics) Confident() bool {
	return d.Tier == TierGrammar && len(d.Skipped) == 0 && len(d.DegradedWidths) == 0
}

type Result struct {
	Module      *model.Module
	Diagnostics Diagnostics
}

// DetectLanguage picks the language from the file extension, falling
// back to sniffing the source for an entity or module keyword.
func DetectLanguage(path, source string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vhd", ".vhdl":
		return LangVHDL
	case ".v", ".sv", ".svh", ".vh":
		return LangVerilog
	}
	if entityPattern.MatchString(source) {
		return LangVHDL
	}
	if modulePattern.MatchString(source) {
		return LangVerilog
	}
	return LangVHDL
}

// ParseFile reads and parses one HDL source file.
func (p *Parser) ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	lang := p.opts.Language
	if lang == "" {
		lang = DetectLanguage(path, string(data))
	}
	return p.parse(string(data), lang)
}

// Parse parses HDL source text directly.
func (p *Parser) Parse(source string) (*Result, error) {
	lang := p.opts.Language
	if lang == "" {
		lang = DetectLanguage("", source)
	}
	return p.parse(source, lang)
}

func (p *Parser) parse(source string, lang Language) (*Result, error) {
	if len(source) > p.opts.MaxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes over the %d byte cap", ErrLimitExceeded, len(source), p.opts.MaxSourceBytes)
	}

	var tiers []tier
	switch lang {
	case LangVerilog:
		tiers = []tier{
			{name: TierGrammar, run: func() tierResult { return parseVerilogGrammar(source, p.opts.MaxNestingDepth) }},
			{name: TierFallback, run: func() tierResult { return parseVerilogFallback(source) }},
		}
	default:
		tiers = []tier{
			{name: TierGrammar, run: func() tierResult { return parseVHDLGrammar(source, p.opts.MaxNestingDepth) }},
			{name: TierFallback, run: func() tierResult { return parseVHDLFallback(source) }},
		}
	}

	out, tierName, deferReason, err := runChain(tiers)
	if err != nil {
		return nil, err
	}

	diags := Diagnostics{
		Language:          lang,
		Tier:              tierName,
		Skipped:           out.skipped,
		AdditionalModules: out.additional,
	}
	if tierName == TierFallback {
		diags.GrammarErr = deferReason
	}

	mod := &model.Module{Name: out.name, Generics: out.generics}
	for _, rp := range out.ports {
		res := ResolveWidth(rp.Type)
		w := res.Width
		if res.Degraded {
			diags.DegradedWidths = append(diags.DegradedWidths, rp.Name)
		}
		if w.IsParam() {
			if declared := genericFor(out.generics, w.Param); declared != "" {
				w = model.Param(declared)
			} else {
				diags.UnresolvedWidths = append(diags.UnresolvedWidths, rp.Name)
			}
		}
		mod.Ports = append(mod.Ports, model.Port{
			Name:      rp.Name,
			Direction: rp.Direction,
			Width:     w,
			Type:      rp.Type,
		})
	}
	return &Result{Module: mod, Diagnostics: diags}, nil
}

// genericFor matches a width symbol against the declared generics
// case-insensitively and returns the declared casing.
func genericFor(generics []model.Generic, symbol string) string {
	for _, g := range generics {
		if strings.EqualFold(g.Name, symbol) {
			return g.Name
		}
	}
	return ""
}
