package analyzer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bleviet/ipcraft/internal/config"
	"github.com/bleviet/ipcraft/internal/hdl"
	"github.com/bleviet/ipcraft/internal/model"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	return a
}

const counterVHDL = `library ieee;
use ieee.std_logic_1164.all;

entity counter is
  generic (
    WIDTH : integer := 8
  );
  port (
    clk   : in  std_logic;
    rst_n : in  std_logic;
    en    : in  std_logic;
    count : out std_logic_vector(WIDTH - 1 downto 0)
  );
end entity counter;
`

const axilRegsVerilog = `module axil_regs #(
    parameter ADDR_WIDTH = 4
) (
    input  wire                  s_axil_aclk,
    input  wire                  s_axil_aresetn,
    input  wire [ADDR_WIDTH-1:0] s_axil_awaddr,
    input  wire [2:0]            s_axil_awprot,
    input  wire                  s_axil_awvalid,
    output wire                  s_axil_awready,
    input  wire [31:0]           s_axil_wdata,
    input  wire [3:0]            s_axil_wstrb,
    input  wire                  s_axil_wvalid,
    output wire                  s_axil_wready,
    output wire [1:0]            s_axil_bresp,
    output wire                  s_axil_bvalid,
    input  wire                  s_axil_bready,
    input  wire [ADDR_WIDTH-1:0] s_axil_araddr,
    input  wire [2:0]            s_axil_arprot,
    input  wire                  s_axil_arvalid,
    output wire                  s_axil_arready,
    output wire [31:0]           s_axil_rdata,
    output wire [1:0]            s_axil_rresp,
    output wire                  s_axil_rvalid,
    input  wire                  s_axil_rready,
    input  wire                  irq_in
);
endmodule
`

// assertPartition checks that every port lands in exactly one of the
// clock, reset, bus or unclassified lists.
func assertPartition(t *testing.T, mod *model.Module) {
	t.Helper()
	roles := mod.Roles()
	require.Len(t, roles, len(mod.Ports))

	counts := make(map[model.Role]int)
	for _, r := range roles {
		counts[r]++
	}
	busPorts := 0
	for _, b := range mod.BusInterfaces {
		busPorts += len(b.MatchedPorts)
	}
	assert.Equal(t, len(mod.Clocks), counts[model.RoleClock])
	assert.Equal(t, len(mod.Resets), counts[model.RoleReset])
	assert.Equal(t, busPorts, counts[model.RoleBus])
	assert.Equal(t, len(mod.UnclassifiedPorts()), counts[model.RoleUnclassified])
}

func TestAnalyzeVHDLCounter(t *testing.T) {
	a := newAnalyzer(t)

	rep, err := a.AnalyzeSource("counter.vhd", counterVHDL)
	require.NoError(t, err)

	mod := rep.Module
	assert.Equal(t, "counter", mod.Name)
	require.Len(t, mod.Generics, 1)
	assert.Equal(t, model.Generic{Name: "WIDTH", Type: "integer", Default: "8"}, mod.Generics[0])
	require.Len(t, mod.Ports, 4)

	require.Len(t, mod.Clocks, 1)
	assert.Equal(t, "clk", mod.Clocks[0].Name)
	require.Len(t, mod.Resets, 1)
	assert.Equal(t, "rst_n", mod.Resets[0].Name)
	assert.Equal(t, model.ActiveLow, mod.Resets[0].Polarity)
	assert.Empty(t, mod.BusInterfaces)

	count, ok := mod.Port("count")
	require.True(t, ok)
	assert.Equal(t, model.Param("WIDTH"), count.Width)

	unclassified := mod.UnclassifiedPorts()
	require.Len(t, unclassified, 2)
	assert.Equal(t, "en", unclassified[0].Name)
	assert.Equal(t, "count", unclassified[1].Name)
	assert.Equal(t, []string{"en", "count"}, rep.Unclassified)

	assert.Equal(t, hdl.LangVHDL, rep.Diagnostics.Language)
	assert.Equal(t, hdl.TierGrammar, rep.Diagnostics.Tier)
	assert.True(t, rep.Diagnostics.Confident())
	assert.Empty(t, rep.Candidates)
	assertPartition(t, mod)
}

func TestAnalyzeVerilogAXI4LiteSlave(t *testing.T) {
	a := newAnalyzer(t)

	rep, err := a.AnalyzeSource("axil_regs.v", axilRegsVerilog)
	require.NoError(t, err)

	mod := rep.Module
	assert.Equal(t, "axil_regs", mod.Name)
	require.Len(t, mod.Ports, 22)

	// The prefixed clock and reset belong to the bus, not to the
	// module-level clock and reset lists.
	assert.Empty(t, mod.Clocks)
	assert.Empty(t, mod.Resets)

	require.Len(t, mod.BusInterfaces, 1)
	bus := mod.BusInterfaces[0]
	assert.Equal(t, "S_AXIL", bus.Name)
	assert.Equal(t, "AXI4L", bus.Type)
	assert.Equal(t, model.ModeSlave, bus.Mode)
	assert.Equal(t, "s_axil_", bus.PhysicalPrefix)
	assert.Len(t, bus.MatchedPorts, 21)

	roles := mod.Roles()
	assert.Equal(t, model.RoleBus, roles["s_axil_aclk"])
	assert.Equal(t, model.RoleBus, roles["s_axil_aresetn"])
	assert.Equal(t, model.RoleUnclassified, roles["irq_in"])
	assert.Equal(t, []string{"irq_in"}, rep.Unclassified)

	require.Len(t, rep.Candidates, 2)
	for _, cand := range rep.Candidates {
		switch cand.BusType {
		case "AXI4L":
			assert.True(t, cand.Accepted)
			assert.Equal(t, 16, cand.RequiredMatched)
			assert.Equal(t, 5, cand.OptionalMatched)
		case "AXI4":
			assert.False(t, cand.Accepted)
			assert.Contains(t, cand.Reason, "below")
		default:
			t.Fatalf("unexpected candidate %s", cand.BusType)
		}
	}

	awaddr, ok := mod.Port("s_axil_awaddr")
	require.True(t, ok)
	assert.Equal(t, model.Param("ADDR_WIDTH"), awaddr.Width)

	assertPartition(t, mod)
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := newAnalyzer(t)

	first, err := a.AnalyzeSource("axil_regs.v", axilRegsVerilog)
	require.NoError(t, err)
	second, err := a.AnalyzeSource("axil_regs.v", axilRegsVerilog)
	require.NoError(t, err)

	assert.Equal(t, first.Module, second.Module)
	assert.Equal(t, first.Candidates, second.Candidates)
}

func TestAnalyzeFile(t *testing.T) {
	a := newAnalyzer(t)
	path := filepath.Join(t.TempDir(), "counter.vhd")
	require.NoError(t, os.WriteFile(path, []byte(counterVHDL), 0o644))

	rep, err := a.AnalyzeFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, rep.Path)
	assert.Equal(t, "counter", rep.Module.Name)

	_, err = a.AnalyzeFile(filepath.Join(t.TempDir(), "missing.vhd"))
	assert.Error(t, err)
}

func TestAnalyzeNoModule(t *testing.T) {
	a := newAnalyzer(t)

	_, err := a.AnalyzeSource("empty.v", "// nothing declared here\n")
	assert.True(t, errors.Is(err, hdl.ErrNoModuleFound))
}

func TestAnalyzerConfiguredLibrary(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "buses.yml")
	libYAML := `SPI:
  description: serial peripheral interconnect
  ports:
    - { name: SCLK, direction: out }
    - { name: MOSI, direction: out }
    - { name: MISO, direction: in }
    - { name: CS_N, direction: out, presence: optional }
`
	require.NoError(t, os.WriteFile(libPath, []byte(libYAML), 0o644))

	cfg := config.DefaultConfig()
	cfg.Buses.Library = libPath
	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"SPI"}, a.Library().Keys())

	src := `module spi_master (
    input  wire clk,
    output wire spi_m_sclk,
    output wire spi_m_mosi,
    input  wire spi_m_miso
);
endmodule
`
	rep, err := a.AnalyzeSource("spi_master.v", src)
	require.NoError(t, err)
	require.Len(t, rep.Module.BusInterfaces, 1)
	bus := rep.Module.BusInterfaces[0]
	assert.Equal(t, "SPI_M", bus.Name)
	assert.Equal(t, "SPI", bus.Type)
	assert.Len(t, bus.MatchedPorts, 3)
}

func TestAnalyzerConfiguredLibraryErrors(t *testing.T) {
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Buses.Library = filepath.Join(dir, "missing.yml")
	_, err := New(cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "read bus library")

	badPath := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(badPath, []byte("SPI:\n  ports: []\n"), 0o644))
	cfg = config.DefaultConfig()
	cfg.Buses.Library = badPath
	_, err = New(cfg, zerolog.Nop())
	assert.Error(t, err)
}
