package detect

import (
	"regexp"
	"strings"

	"github.com/bleviet/ipcraft/internal/model"
)

// Prefix patterns for common interface families, most specific first.
// Group 1 captures the instance prefix; the lazy body lets a prefix
// carry an instance infix, so s_axi_dma_awaddr groups under
// s_axi_dma_.
var familyPrefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(s_axil_\w*?)(?:aw|ar|w|r|b)`),
	regexp.MustCompile(`^(m_axil_\w*?)(?:aw|ar|w|r|b)`),
	regexp.MustCompile(`^(s_axi_\w*?)(?:aw|ar|w|r|b)`),
	regexp.MustCompile(`^(m_axi_\w*?)(?:aw|ar|w|r|b)`),
	regexp.MustCompile(`^(s_axis_\w*?)t`),
	regexp.MustCompile(`^(m_axis_\w*?)t`),
	regexp.MustCompile(`^(avs_)`),
	regexp.MustCompile(`^(avm_)`),
	regexp.MustCompile(`^(asi_)`),
	regexp.MustCompile(`^(aso_)`),
}

// portGroup is one candidate interface: a shared prefix plus the ports
// carrying it, in declaration order.
type portGroup struct {
	prefix string
	ports  []model.Port
}

// groupByPrefix buckets ports by candidate interface prefix. Family
// patterns are tried first; the generic rule then groups any port
// sharing its first two underscore tokens with at least one other
// port. Both rules can feed the same bucket, and a port lands in at
// most one group. Group order follows first appearance.
func groupByPrefix(ports []model.Port) []portGroup {
	index := make(map[string]int)
	var groups []portGroup

	add := func(prefix string, p model.Port) {
		i, ok := index[prefix]
		if !ok {
			i = len(groups)
			index[prefix] = i
			groups = append(groups, portGroup{prefix: prefix})
		}
		groups[i].ports = append(groups[i].ports, p)
	}

	for _, p := range ports {
		name := strings.ToLower(p.Name)
		if prefix, ok := familyPrefix(name); ok {
			add(prefix, p)
			continue
		}
		if prefix, ok := genericPrefix(name, p, ports); ok {
			add(prefix, p)
		}
	}
	return groups
}

func familyPrefix(name string) (string, bool) {
	for _, re := range familyPrefixPatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// genericPrefix proposes the first two underscore tokens as prefix
// when at least one other port shares them.
func genericPrefix(name string, self model.Port, ports []model.Port) (string, bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return "", false
	}
	prefix := parts[0] + "_" + parts[1] + "_"
	for _, other := range ports {
		if other.Name == self.Name {
			continue
		}
		if strings.HasPrefix(strings.ToLower(other.Name), prefix) {
			return prefix, true
		}
	}
	return "", false
}
