package hdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bleviet/ipcraft/internal/model"
)

func parseVerilog(t *testing.T, source string) *Result {
	t.Helper()
	res, err := NewParser(Options{Language: LangVerilog}).Parse(source)
	require.NoError(t, err)
	require.NotNil(t, res.Module)
	return res
}

func TestParseVerilogANSI(t *testing.T) {
	res := parseVerilog(t, `
module shifter #(
  parameter WIDTH = 8,
  parameter integer STAGES = 2
) (
  input  wire             clk,
  input  wire             rst_n,
  input  wire [WIDTH-1:0] d,
  output reg  [WIDTH-1:0] q
);
  always @(posedge clk) q <= d;
endmodule
`)

	mod := res.Module
	assert.Equal(t, "shifter", mod.Name)
	assert.Equal(t, TierGrammar, res.Diagnostics.Tier)
	assert.True(t, res.Diagnostics.Confident())

	require.Len(t, mod.Generics, 2)
	assert.Equal(t, model.Generic{Name: "WIDTH", Default: "8"}, mod.Generics[0])
	assert.Equal(t, model.Generic{Name: "STAGES", Type: "integer", Default: "2"}, mod.Generics[1])

	require.Len(t, mod.Ports, 4)
	assert.Equal(t, "clk", mod.Ports[0].Name)
	assert.Equal(t, model.Bits(1), mod.Ports[0].Width)
	assert.Equal(t, "wire", mod.Ports[0].Type)

	d := mod.Ports[2]
	assert.Equal(t, model.DirIn, d.Direction)
	assert.Equal(t, model.Param("WIDTH"), d.Width)
	assert.Equal(t, "wire [WIDTH-1:0]", d.Type)

	q := mod.Ports[3]
	assert.Equal(t, model.DirOut, q.Direction)
	assert.Equal(t, "reg [WIDTH-1:0]", q.Type)
}

func TestParseVerilogANSIInheritance(t *testing.T) {
	res := parseVerilog(t, `module pair (input [3:0] a, b, output y); endmodule`)

	require.Len(t, res.Module.Ports, 3)
	a, b, y := res.Module.Ports[0], res.Module.Ports[1], res.Module.Ports[2]
	assert.Equal(t, model.DirIn, a.Direction)
	assert.Equal(t, model.Bits(4), a.Width)
	assert.Equal(t, model.DirIn, b.Direction)
	assert.Equal(t, model.Bits(4), b.Width)
	assert.Equal(t, model.DirOut, y.Direction)
	assert.Equal(t, model.Bits(1), y.Width)
}

func TestParseVerilogNonANSI(t *testing.T) {
	res := parseVerilog(t, `
module legacy (clk, rst, data, q, spare);
  input clk;
  input rst;
  input [7:0] data;
  output reg [7:0] q;
  parameter DELAY = 3;
  wire unrelated;
endmodule
`)

	mod := res.Module
	assert.Equal(t, "legacy", mod.Name)
	require.Len(t, mod.Ports, 5)

	assert.Equal(t, model.DirIn, mod.Ports[0].Direction)
	assert.Equal(t, model.Bits(1), mod.Ports[0].Width)

	data := mod.Ports[2]
	assert.Equal(t, "[7:0]", data.Type)
	assert.Equal(t, model.Bits(8), data.Width)

	q := mod.Ports[3]
	assert.Equal(t, model.DirOut, q.Direction)
	assert.Equal(t, "reg [7:0]", q.Type)

	// never declared in the body: single-bit input by default
	spare := mod.Ports[4]
	assert.Equal(t, model.DirIn, spare.Direction)
	assert.Equal(t, model.Bits(1), spare.Width)
	assert.Equal(t, "", spare.Type)

	require.Len(t, mod.Generics, 1)
	assert.Equal(t, model.Generic{Name: "DELAY", Default: "3"}, mod.Generics[0])
}

func TestParseVerilogTrailingComma(t *testing.T) {
	res := parseVerilog(t, `module tail (input a, output y,); endmodule`)
	assert.Equal(t, TierGrammar, res.Diagnostics.Tier)
	require.Len(t, res.Module.Ports, 2)

	res = parseVerilog(t, "module tail2 (a, y,);\n  input a;\n  output y;\nendmodule\n")
	assert.Equal(t, TierGrammar, res.Diagnostics.Tier)
	require.Len(t, res.Module.Ports, 2)
	assert.Equal(t, model.DirOut, res.Module.Ports[1].Direction)
}

func TestParseVerilogFunctionArgsIgnored(t *testing.T) {
	res := parseVerilog(t, `
module withfunc (a, y);
  input a;
  output y;
  function parity;
    input [7:0] v;
    parity = ^v;
  endfunction
endmodule
`)
	require.Len(t, res.Module.Ports, 2)
	assert.Equal(t, "a", res.Module.Ports[0].Name)
	assert.Equal(t, "y", res.Module.Ports[1].Name)
}

func TestParseVerilogPortlessModule(t *testing.T) {
	res := parseVerilog(t, `
module bench;
  parameter PERIOD = 10;
  initial $finish;
endmodule
`)
	assert.Equal(t, "bench", res.Module.Name)
	assert.Empty(t, res.Module.Ports)
	require.Len(t, res.Module.Generics, 1)
	assert.Equal(t, "PERIOD", res.Module.Generics[0].Name)
}

func TestParseVerilogFirstModuleWins(t *testing.T) {
	res := parseVerilog(t, `
module alpha (input a); endmodule
module beta (input b); endmodule
`)
	assert.Equal(t, "alpha", res.Module.Name)
	assert.Equal(t, []string{"beta"}, res.Diagnostics.AdditionalModules)
}

func TestParseVerilogComments(t *testing.T) {
	res := parseVerilog(t, `
// interface ports
module commented (
  input clk, /* main clock */
  output q  // registered output
);
endmodule
`)
	require.Len(t, res.Module.Ports, 2)
	assert.Equal(t, "clk", res.Module.Ports[0].Name)
	assert.Equal(t, "q", res.Module.Ports[1].Name)
}

func TestParseVerilogNoModule(t *testing.T) {
	_, err := NewParser(Options{Language: LangVerilog}).Parse("`timescale 1ns/1ps\n")
	assert.ErrorIs(t, err, ErrNoModuleFound)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path   string
		source string
		want   Language
	}{
		{"core.vhd", "", LangVHDL},
		{"core.vhdl", "", LangVHDL},
		{"core.v", "", LangVerilog},
		{"core.sv", "", LangVerilog},
		{"CORE.VHD", "", LangVHDL},
		{"", "entity e is port (a : in bit); end;", LangVHDL},
		{"", "module m (input a); endmodule", LangVerilog},
		{"", "plain text", LangVHDL},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path, tt.source), "path %q", tt.path)
	}
}
