package model

import (
	"strconv"
	"strings"
)

// Polarity says which level asserts a reset
type Polarity string

const (
	ActiveHigh Polarity = "activeHigh"
	ActiveLow  Polarity = "activeLow"
)

// ParsePolarity normalizes polarity strings case-insensitively, accepting
// both camelCase and snake_case spellings. Unknown strings default to
// active-high, the common case for synchronous resets.
func ParsePolarity(s string) Polarity {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "") {
	case "activelow":
		return ActiveLow
	default:
		return ActiveHigh
	}
}

// Clock is a port classified as a clock. Frequency is an optional
// human-written hint such as "100MHz"; detection leaves it empty.
type Clock struct {
	Name      string `yaml:"name" json:"name"`
	Frequency string `yaml:"frequency,omitempty" json:"frequency,omitempty"`
}

// FrequencyHz parses the frequency hint into Hz. The second return is
// false when no hint is set or it does not parse.
func (c Clock) FrequencyHz() (float64, bool) {
	s := strings.ToUpper(strings.TrimSpace(c.Frequency))
	if s == "" {
		return 0, false
	}
	// Longest suffix first so MHZ is not consumed as HZ
	for _, m := range []struct {
		suffix string
		mult   float64
	}{
		{"GHZ", 1e9},
		{"MHZ", 1e6},
		{"KHZ", 1e3},
		{"HZ", 1},
	} {
		if strings.HasSuffix(s, m.suffix) {
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, m.suffix)), 64)
			if err != nil {
				return 0, false
			}
			return v * m.mult, true
		}
	}
	return 0, false
}

// Reset is a port classified as a reset with its inferred polarity
type Reset struct {
	Name     string   `yaml:"name" json:"name"`
	Polarity Polarity `yaml:"polarity" json:"polarity"`
}

// IsActiveLow reports whether the reset asserts low
func (r Reset) IsActiveLow() bool { return r.Polarity == ActiveLow }

// IsActiveHigh reports whether the reset asserts high
func (r Reset) IsActiveHigh() bool { return r.Polarity != ActiveLow }
