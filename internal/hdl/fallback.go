package hdl

import (
	"regexp"
	"strings"

	"github.com/bleviet/ipcraft/internal/model"
)

var (
	// Pattern: entity <name> is
	entityPattern = regexp.MustCompile(`(?i)\bentity\s+(\w+)\s+is\b`)

	// Pattern: port (
	portOpenPattern = regexp.MustCompile(`(?i)\bport\s*\(`)

	// Pattern: generic (
	genericOpenPattern = regexp.MustCompile(`(?i)\bgeneric\s*\(`)

	// Pattern: end [entity] [<name>] ;
	endPattern = regexp.MustCompile(`(?i)\bend\b`)

	// Pattern: a, b : in std_logic_vector(7 downto 0) [:= default]
	vhdlPortPattern = regexp.MustCompile(`(?i)^(\w+(?:\s*,\s*\w+)*)\s*:\s*(in|out|inout|buffer|linkage)\b\s*(.+?)(?:\s*:=\s*(.+))?$`)

	// Pattern: WIDTH : integer [:= 8]
	vhdlGenericPattern = regexp.MustCompile(`(?i)^(\w+(?:\s*,\s*\w+)*)\s*:\s*(.+?)(?:\s*:=\s*(.+))?$`)

	// Pattern: -- comment
	vhdlCommentPattern = regexp.MustCompile(`--[^\n]*`)

	// Pattern: module <name>
	modulePattern = regexp.MustCompile(`(?i)\bmodule\s+(\w+)`)

	// Pattern: endmodule
	endmodulePattern = regexp.MustCompile(`(?i)\bendmodule\b`)

	// Pattern: input wire [7:0] data
	ansiPortPattern = regexp.MustCompile(`(?i)^(input|output|inout)\s+((?:(?:reg|wire|logic|signed|unsigned|var|bit|tri)\s+)*)(\[[^\]]+\]\s*)?(\w+)$`)

	// Pattern: input [7:0] a, b ;
	verilogDeclPattern = regexp.MustCompile(`(?i)\b(input|output|inout)\s+((?:(?:reg|wire|logic|signed|unsigned|var|bit|tri)\s+)*)(\[[^\]]+\]\s*)?(\w+(?:\s*,\s*\w+)*)\s*;`)

	// Pattern: parameter [type] NAME = value
	parameterPattern = regexp.MustCompile(`(?i)\bparameter\s+(?:(\w+)\s+)?(\w+)\s*=\s*([^;,)\n]+)`)

	// Pattern: // comment
	lineCommentPattern = regexp.MustCompile(`//[^\n]*`)

	// Pattern: /* comment */
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// Pattern: lone identifier
	bareNamePattern = regexp.MustCompile(`^\w+$`)
)

// parseVHDLFallback recovers what it can from source the grammar gave
// up on. Declarations it cannot read are recorded and skipped, never
// fatal.
func parseVHDLFallback(source string) tierResult {
	text := vhdlCommentPattern.ReplaceAllString(source, "")

	locs := entityPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return deferResult("no entity declaration found")
	}
	out := &parseOutput{name: text[locs[0][2]:locs[0][3]]}
	for _, loc := range locs[1:] {
		out.additional = append(out.additional, text[loc[2]:loc[3]])
	}

	// only search the first entity's own region for clauses
	regionEnd := len(text)
	if len(locs) > 1 {
		regionEnd = locs[1][0]
	}
	region := text[locs[0][1]:regionEnd]
	if m := endPattern.FindStringIndex(region); m != nil {
		region = region[:m[0]]
	}

	if m := genericOpenPattern.FindStringIndex(region); m != nil {
		if block, ok := parenBlock(region, m[1]-1); ok {
			vhdlGenericItems(block, out)
		}
	}
	if m := portOpenPattern.FindStringIndex(region); m != nil {
		if block, ok := parenBlock(region, m[1]-1); ok {
			vhdlPortItems(block, out)
		}
	}
	return okResult(out)
}

func vhdlPortItems(block string, out *parseOutput) {
	for _, item := range splitTopLevel(block, ';') {
		item = normalizeSpace(item)
		if item == "" {
			continue
		}
		m := vhdlPortPattern.FindStringSubmatch(item)
		if m == nil {
			out.skipped = append(out.skipped, SkippedItem{Text: item, Reason: "unrecognized port declaration"})
			continue
		}
		dir := model.ParseDirection(m[2])
		typ := strings.TrimSpace(m[3])
		for _, name := range splitNames(m[1]) {
			out.ports = append(out.ports, rawPort{Name: name, Direction: dir, Type: typ})
		}
	}
}

func vhdlGenericItems(block string, out *parseOutput) {
	for _, item := range splitTopLevel(block, ';') {
		item = normalizeSpace(item)
		if item == "" {
			continue
		}
		m := vhdlGenericPattern.FindStringSubmatch(item)
		if m == nil {
			out.skipped = append(out.skipped, SkippedItem{Text: item, Reason: "unrecognized generic declaration"})
			continue
		}
		typ := strings.TrimSpace(m[2])
		def := strings.TrimSpace(m[3])
		for _, name := range splitNames(m[1]) {
			out.generics = append(out.generics, model.Generic{Name: name, Type: typ, Default: def})
		}
	}
}

// parseVerilogFallback mirrors the VHDL fallback for module headers.
func parseVerilogFallback(source string) tierResult {
	text := blockCommentPattern.ReplaceAllString(source, " ")
	text = lineCommentPattern.ReplaceAllString(text, "")

	locs := modulePattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return deferResult("no module declaration found")
	}
	out := &parseOutput{name: text[locs[0][2]:locs[0][3]]}
	for _, loc := range locs[1:] {
		out.additional = append(out.additional, text[loc[2]:loc[3]])
	}

	regionEnd := len(text)
	if len(locs) > 1 {
		regionEnd = locs[1][0]
	}
	region := text[locs[0][1]:regionEnd]
	if m := endmodulePattern.FindStringIndex(region); m != nil {
		region = region[:m[0]]
	}

	for _, m := range parameterPattern.FindAllStringSubmatch(region, -1) {
		name := m[2]
		known := false
		for _, g := range out.generics {
			if g.Name == name {
				known = true
				break
			}
		}
		if !known {
			out.generics = append(out.generics, model.Generic{
				Name:    name,
				Type:    strings.TrimSpace(m[1]),
				Default: strings.TrimSpace(m[3]),
			})
		}
	}

	idx := skipSpace(region, 0)
	if idx < len(region) && region[idx] == '#' {
		if _, after, ok := parenSpan(region, skipSpace(region, idx+1)); ok {
			idx = skipSpace(region, after)
		}
	}
	if idx >= len(region) || region[idx] != '(' {
		// no port list, a legal if unusual module
		return okResult(out)
	}
	block, after, ok := parenSpan(region, idx)
	if !ok {
		return deferResult("unbalanced port list")
	}
	verilogPortItems(block, region[after:], out)
	return okResult(out)
}

func verilogPortItems(block, body string, out *parseOutput) {
	items := splitTopLevel(block, ',')

	ansi := false
	for _, item := range items {
		item = normalizeSpace(item)
		if item == "" {
			continue
		}
		ansi = ansiPortPattern.MatchString(item)
		break
	}

	if ansi {
		var ctx ansiCtx
		for _, item := range items {
			item = normalizeSpace(item)
			if item == "" {
				continue
			}
			if m := ansiPortPattern.FindStringSubmatch(item); m != nil {
				ctx.dir = model.ParseDirection(m[1])
				ctx.typ = normalizeSpace(m[2] + " " + m[3])
				out.ports = append(out.ports, rawPort{Name: m[4], Direction: ctx.dir, Type: ctx.typ})
				continue
			}
			if bareNamePattern.MatchString(item) {
				out.ports = append(out.ports, rawPort{Name: item, Direction: ctx.dir, Type: ctx.typ})
				continue
			}
			out.skipped = append(out.skipped, SkippedItem{Text: item, Reason: "unrecognized port declaration"})
		}
		return
	}

	var header []string
	for _, item := range items {
		item = normalizeSpace(item)
		if item == "" {
			continue
		}
		if !bareNamePattern.MatchString(item) {
			out.skipped = append(out.skipped, SkippedItem{Text: item, Reason: "unrecognized port name"})
			continue
		}
		header = append(header, item)
	}

	decls := make(map[string]portBinding)
	for _, m := range verilogDeclPattern.FindAllStringSubmatch(body, -1) {
		dir := model.ParseDirection(m[1])
		typ := normalizeSpace(m[2] + " " + m[3])
		for _, name := range splitNames(m[4]) {
			decls[name] = portBinding{dir: dir, typ: typ}
		}
	}
	for _, name := range header {
		if b, ok := decls[name]; ok {
			out.ports = append(out.ports, rawPort{Name: name, Direction: b.dir, Type: b.typ})
		} else {
			out.ports = append(out.ports, rawPort{Name: name, Direction: model.DirIn})
		}
	}
}

// parenBlock returns the text inside the paren opening at openIdx.
func parenBlock(s string, openIdx int) (string, bool) {
	inner, _, ok := parenSpan(s, openIdx)
	return inner, ok
}

// parenSpan returns the text inside the paren opening at openIdx and
// the index just past the matching close.
func parenSpan(s string, openIdx int) (string, int, bool) {
	if openIdx >= len(s) || s[openIdx] != '(' {
		return "", 0, false
	}
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[openIdx+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// splitTopLevel splits on sep only outside parens and brackets, so a
// separator inside a range or call never breaks a declaration apart.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}
