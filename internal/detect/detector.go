// Package detect classifies parsed ports: clocks and resets are tagged
// by naming convention, and the remaining ports are grouped by shared
// prefix and scored against the bus definition library to recover
// standard bus interfaces.
package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bleviet/ipcraft/internal/buslib"
	"github.com/bleviet/ipcraft/internal/model"
)

// TieBreak selects the rule applied when two definitions score equally
// against the same prefix group.
type TieBreak string

const (
	// TieBreakDeclaration prefers the definition declared earlier in
	// the library.
	TieBreakDeclaration TieBreak = "declaration"
	// TieBreakLexical prefers the lexicographically smaller key.
	TieBreakLexical TieBreak = "lexical"
)

// DefaultMinRequiredRatio is the fraction of a definition's required
// signals a group must cover before the match counts.
const DefaultMinRequiredRatio = 0.7

// Options tune match acceptance.
type Options struct {
	// MinRequiredRatio overrides the default required-signal coverage;
	// zero keeps the default, 1.0 demands full coverage.
	MinRequiredRatio float64
	TieBreak         TieBreak
}

// Detector matches prefix groups against a bus definition library.
type Detector struct {
	lib    *buslib.Library
	opts   Options
	logger zerolog.Logger
}

// New creates a detector over the given library.
func New(lib *buslib.Library, opts Options, logger zerolog.Logger) *Detector {
	if opts.MinRequiredRatio <= 0 {
		opts.MinRequiredRatio = DefaultMinRequiredRatio
	}
	if opts.TieBreak == "" {
		opts.TieBreak = TieBreakDeclaration
	}
	return &Detector{lib: lib, opts: opts, logger: logger}
}

// Candidate is one scored (prefix group, definition) pairing, kept for
// diagnostics. Accepted marks the pairing that produced an interface.
type Candidate struct {
	Prefix          string `yaml:"prefix" json:"prefix"`
	BusType         string `yaml:"busType" json:"busType"`
	Score           int    `yaml:"score" json:"score"`
	RequiredMatched int    `yaml:"requiredMatched" json:"requiredMatched"`
	RequiredTotal   int    `yaml:"requiredTotal" json:"requiredTotal"`
	OptionalMatched int    `yaml:"optionalMatched" json:"optionalMatched"`
	Accepted        bool   `yaml:"accepted" json:"accepted"`
	Reason          string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Detection is the outcome over one port set: accepted interfaces in
// group order, plus every candidate that matched at least one signal.
type Detection struct {
	Interfaces []model.BusInterface
	Candidates []Candidate
}

// Detect scores prefix groups against the library and returns disjoint
// interfaces. The caller passes the ports not already tagged as clock
// or reset; ports matched by an accepted interface are excluded from
// later groups.
func (d *Detector) Detect(ports []model.Port) Detection {
	var det Detection
	claimed := make(map[string]bool)

	for _, g := range groupByPrefix(ports) {
		g = dropClaimed(g, claimed)
		if len(g.ports) == 0 {
			continue
		}
		iface, cands := d.matchGroup(g)
		det.Candidates = append(det.Candidates, cands...)
		if iface == nil {
			continue
		}
		det.Interfaces = append(det.Interfaces, *iface)
		for _, p := range iface.MatchedPorts {
			claimed[strings.ToLower(p.Name)] = true
		}
		d.logger.Debug().
			Str("prefix", iface.PhysicalPrefix).
			Str("type", iface.Type).
			Str("mode", string(iface.Mode)).
			Int("ports", len(iface.MatchedPorts)).
			Msg("bus interface detected")
	}
	return det
}

type scoredDef struct {
	def     *buslib.Definition
	cand    Candidate
	matched []model.Port
}

// matchGroup evaluates one prefix group against every definition and
// picks the best passing one. Equal scores fall back to the configured
// tie-break order.
func (d *Detector) matchGroup(g portGroup) (*model.BusInterface, []Candidate) {
	type member struct {
		port   model.Port
		suffix string
	}
	members := make([]member, len(g.ports))
	suffixes := make(map[string]model.Port, len(g.ports))
	for i, p := range g.ports {
		s := strings.ToUpper(strings.ToLower(p.Name)[len(g.prefix):])
		members[i] = member{port: p, suffix: s}
		suffixes[s] = p
	}

	keys := d.lib.Keys()
	if d.opts.TieBreak == TieBreakLexical {
		sort.Strings(keys)
	}

	var cands []Candidate
	var passing []scoredDef
	for _, key := range keys {
		def, ok := d.lib.Get(key)
		if !ok {
			continue
		}

		reqMatched, optMatched := 0, 0
		var matched []model.Port
		for _, m := range members {
			pd, ok := def.Port(m.suffix)
			if !ok {
				continue
			}
			matched = append(matched, m.port)
			if pd.IsRequired() {
				reqMatched++
			} else {
				optMatched++
			}
		}
		if reqMatched == 0 && optMatched == 0 {
			continue
		}

		reqTotal := def.RequiredCount()
		cand := Candidate{
			Prefix:          g.prefix,
			BusType:         def.Key,
			Score:           reqMatched*10 + optMatched,
			RequiredMatched: reqMatched,
			RequiredTotal:   reqTotal,
			OptionalMatched: optMatched,
		}

		ratio := 0.0
		if reqTotal > 0 {
			ratio = float64(reqMatched) / float64(reqTotal)
		}
		if ratio < d.opts.MinRequiredRatio {
			cand.Reason = fmt.Sprintf("required coverage %d/%d below %.2f",
				reqMatched, reqTotal, d.opts.MinRequiredRatio)
			cands = append(cands, cand)
			continue
		}
		passing = append(passing, scoredDef{def: def, cand: cand, matched: matched})
	}
	if len(passing) == 0 {
		return nil, cands
	}

	win := 0
	for i := 1; i < len(passing); i++ {
		if passing[i].cand.Score > passing[win].cand.Score {
			win = i
		}
	}
	winner := passing[win]

	if len(passing) > 1 {
		others := make([]string, 0, len(passing)-1)
		for i, s := range passing {
			if i != win {
				others = append(others, s.def.Key)
			}
		}
		d.logger.Debug().
			Str("prefix", g.prefix).
			Str("chosen", winner.def.Key).
			Strs("alsoPassing", others).
			Msg("ambiguous bus match resolved by score")
	}

	for i := range passing {
		if i == win {
			passing[i].cand.Accepted = true
		} else {
			passing[i].cand.Reason = "outscored by " + winner.def.Key
		}
		cands = append(cands, passing[i].cand)
	}

	return &model.BusInterface{
		Name:           strings.ToUpper(strings.Trim(g.prefix, "_")),
		Type:           winner.def.Key,
		Mode:           d.inferMode(winner.def, suffixes),
		PhysicalPrefix: g.prefix,
		MatchedPorts:   winner.matched,
	}, cands
}

// Designated signals that reveal mode. On a memory-mapped bus the
// ready and read-data lines always flow slave to master; on a
// streaming bus the data line flows source to sink.
var (
	memoryModeSignals = map[string]bool{"AWREADY": true, "ARREADY": true, "READDATA": true}
	streamModeSignals = map[string]bool{"TDATA": true, "DATA": true}
)

// inferMode compares the actual direction of the first designated
// signal present against the definition's master-perspective
// direction: equal means the module initiates, inverted means it
// responds. Groups with no designated signal default to the
// responding side.
func (d *Detector) inferMode(def *buslib.Definition, suffixes map[string]model.Port) model.Mode {
	designated, match, mismatch := memoryModeSignals, model.ModeMaster, model.ModeSlave
	if def.Kind == buslib.Streaming {
		designated, match, mismatch = streamModeSignals, model.ModeSource, model.ModeSink
	}

	for _, pd := range def.Ports {
		if !designated[pd.Name] {
			continue
		}
		p, ok := suffixes[pd.Name]
		if !ok {
			continue
		}
		switch p.Direction {
		case pd.Direction:
			return match
		case opposite(pd.Direction):
			return mismatch
		}
		// inout leaves the signal undecided
	}
	return mismatch
}

func opposite(dir model.Direction) model.Direction {
	switch dir {
	case model.DirIn:
		return model.DirOut
	case model.DirOut:
		return model.DirIn
	default:
		return model.DirInout
	}
}

func dropClaimed(g portGroup, claimed map[string]bool) portGroup {
	if len(claimed) == 0 {
		return g
	}
	out := portGroup{prefix: g.prefix}
	for _, p := range g.ports {
		if !claimed[strings.ToLower(p.Name)] {
			out.ports = append(out.ports, p)
		}
	}
	return out
}
