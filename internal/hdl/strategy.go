package hdl

import "github.com/bleviet/ipcraft/internal/model"

type outcome int

const (
	outcomeOK outcome = iota
	outcomeDefer
	outcomeFail
)

// SkippedItem records one declaration the tolerant tier dropped instead
// of failing the whole file over it.
type SkippedItem struct {
	Text   string `yaml:"text" json:"text"`
	Reason string `yaml:"reason" json:"reason"`
}

// parseOutput is what a successful tier hands back: the module header
// contents plus whatever the tier had to leave behind.
type parseOutput struct {
	name       string
	generics   []model.Generic
	ports      []rawPort
	skipped    []SkippedItem
	additional []string
}

// rawPort is a port before width resolution. Type holds the verbatim
// declaration text with direction and names stripped.
type rawPort struct {
	Name      string
	Direction model.Direction
	Type      string
}

type tierResult struct {
	outcome outcome
	out     *parseOutput
	reason  string
	err     error
}

func okResult(out *parseOutput) tierResult {
	return tierResult{outcome: outcomeOK, out: out}
}

func deferResult(reason string) tierResult {
	return tierResult{outcome: outcomeDefer, reason: reason}
}

func failResult(err error) tierResult {
	return tierResult{outcome: outcomeFail, err: err}
}

type tier struct {
	name string
	run  func() tierResult
}

// runChain tries each tier in order. The first to produce a module
// wins; a deferring tier records why and hands over to the next; a
// failing tier aborts the parse outright. If every tier defers there
// is no module to report.
func runChain(tiers []tier) (out *parseOutput, tierName, deferReason string, err error) {
	for _, t := range tiers {
		res := t.run()
		switch res.outcome {
		case outcomeOK:
			return res.out, t.name, deferReason, nil
		case outcomeDefer:
			if deferReason == "" {
				deferReason = res.reason
			}
		case outcomeFail:
			return nil, t.name, deferReason, res.err
		}
	}
	return nil, "", deferReason, ErrNoModuleFound
}
