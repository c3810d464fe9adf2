package detect

import (
	"regexp"
	"strings"

	"github.com/bleviet/ipcraft/internal/model"
)

// Naming conventions for clock and reset inputs, matched against the
// lower-cased port name. Clock tags take priority over reset tags so
// the two lists stay disjoint.
var clockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^i?_?clk`),
	regexp.MustCompile(`^i?_?clock`),
	regexp.MustCompile(`_clk$`),
	regexp.MustCompile(`_clock$`),
	regexp.MustCompile(`^aclk$`),
	regexp.MustCompile(`^i_clk_.*`),
}

var resetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^i?_?rst`),
	regexp.MustCompile(`^i?_?reset`),
	regexp.MustCompile(`_rst$`),
	regexp.MustCompile(`_reset$`),
	regexp.MustCompile(`^aresetn?$`),
	regexp.MustCompile(`^i_rst_n?_.*`),
}

// ClassifyClocksResets tags single-bit input ports as clocks or resets
// by naming convention. Vector, output and bidirectional ports are
// never tagged; everything else is left for the bus detector.
func ClassifyClocksResets(ports []model.Port) ([]model.Clock, []model.Reset) {
	var clocks []model.Clock
	var resets []model.Reset

	for _, p := range ports {
		if p.Direction != model.DirIn || p.IsVector() {
			continue
		}
		name := strings.ToLower(p.Name)

		if matchAny(clockPatterns, name) {
			clocks = append(clocks, model.Clock{Name: p.Name})
			continue
		}
		if matchAny(resetPatterns, name) {
			resets = append(resets, model.Reset{
				Name:     p.Name,
				Polarity: resetPolarity(name),
			})
		}
	}
	return clocks, resets
}

func matchAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// resetPolarity reads polarity off a trailing negation marker:
// sys_rst_n and aresetn assert low. A mid-name marker such as
// rst_n_sync does not count.
func resetPolarity(lower string) model.Polarity {
	if strings.HasSuffix(lower, "_n") || strings.HasSuffix(lower, "resetn") {
		return model.ActiveLow
	}
	return model.ActiveHigh
}
