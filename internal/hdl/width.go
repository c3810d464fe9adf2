package hdl

import (
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
	"strings"

	"github.com/bleviet/ipcraft/internal/model"
)

// Resolved is the outcome of width analysis for one declared type.
type Resolved struct {
	Width    model.Width
	IsVector bool
	Degraded bool
}

var (
	vhdlRangeRe    = regexp.MustCompile(`(?i)\(\s*(.+?)\s+(downto|to)\s+(.+?)\s*\)`)
	verilogRangeRe = regexp.MustCompile(`\[\s*([^\]:]+):([^\]]+)\]`)
	integerRangeRe = regexp.MustCompile(`(?i)^(?:integer|natural|positive)\s+range\s+(\d+)\s+(?:to|downto)\s+(\d+)\b`)
	boundSymbolRe  = regexp.MustCompile(`[A-Za-z_]\w*`)
)

// Words that show up inside range bounds without ever being the generic
// that sizes the port.
var boundNoise = map[string]bool{
	"downto": true,
	"to":     true,
	"log2":   true,
	"clog2":  true,
	"ceil":   true,
	"floor":  true,
	"max":    true,
	"min":    true,
	"abs":    true,
	"others": true,
}

// ResolveWidth derives a port's bit width from its declared type text.
// Numeric bounds resolve to a count, symbolic bounds resolve to the
// generic referenced by the bound expression, and a range we cannot
// make sense of degrades to a single bit rather than failing the port.
func ResolveWidth(rawType string) Resolved {
	typ := strings.TrimSpace(rawType)
	if typ == "" {
		return Resolved{Width: model.Bits(1)}
	}

	if m := integerRangeRe.FindStringSubmatch(typ); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if hi < lo {
			lo, hi = hi, lo
		}
		n := bits.Len(uint(hi))
		if n == 0 {
			n = 1
		}
		return Resolved{Width: model.Bits(n), IsVector: n > 1}
	}

	if m := vhdlRangeRe.FindStringSubmatch(typ); m != nil {
		return resolveBounds(m[1], m[3])
	}
	if m := verilogRangeRe.FindStringSubmatch(typ); m != nil {
		return resolveBounds(m[1], m[2])
	}

	if !strings.ContainsAny(typ, "([") {
		return Resolved{Width: model.Bits(1)}
	}
	// a range opener was present but no recognizable bounds
	return Resolved{Width: model.Bits(1), Degraded: true}
}

func resolveBounds(left, right string) Resolved {
	l, lok := boundInt(left)
	r, rok := boundInt(right)
	if lok && rok {
		lo, hi := l, r
		if lo > hi {
			lo, hi = hi, lo
		}
		return Resolved{Width: model.Bits(hi - lo + 1), IsVector: true}
	}
	if sym := principalSymbol(left); sym != "" {
		return Resolved{Width: model.Param(sym), IsVector: true}
	}
	if sym := principalSymbol(right); sym != "" {
		return Resolved{Width: model.Param(sym), IsVector: true}
	}
	return Resolved{Width: model.Bits(1), Degraded: true}
}

func boundInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// principalSymbol picks the identifier a bound expression hangs on,
// e.g. ADDR_WIDTH out of "ADDR_WIDTH-1" or "clog2(DEPTH)" -> DEPTH.
func principalSymbol(expr string) string {
	for _, id := range boundSymbolRe.FindAllString(expr, -1) {
		if !boundNoise[strings.ToLower(id)] {
			return id
		}
	}
	return ""
}

// ParseBitRange parses a register-field style range like "[7:4]", "7:4"
// or a single bit index "3" into (offset, width).
func ParseBitRange(s string) (offset, width int, err error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "[")
	t = strings.TrimSuffix(t, "]")
	t = strings.TrimSpace(t)

	if msbStr, lsbStr, found := strings.Cut(t, ":"); found {
		msb, errM := strconv.Atoi(strings.TrimSpace(msbStr))
		lsb, errL := strconv.Atoi(strings.TrimSpace(lsbStr))
		if errM != nil || errL != nil {
			return 0, 0, fmt.Errorf("invalid bit range %q", s)
		}
		if msb < lsb {
			return 0, 0, fmt.Errorf("bit range %q is reversed", s)
		}
		return lsb, msb - lsb + 1, nil
	}

	bit, errB := strconv.Atoi(t)
	if errB != nil {
		return 0, 0, fmt.Errorf("invalid bit range %q", s)
	}
	if bit < 0 {
		return 0, 0, fmt.Errorf("invalid bit range %q", s)
	}
	return bit, 1, nil
}
