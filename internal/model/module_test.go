package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registersModule() *Module {
	return &Module{
		Name: "regs",
		Ports: []Port{
			{Name: "clk", Direction: DirIn, Width: Bits(1)},
			{Name: "rst_n", Direction: DirIn, Width: Bits(1)},
			{Name: "s_axi_awaddr", Direction: DirIn, Width: Bits(32)},
			{Name: "s_axi_awvalid", Direction: DirIn, Width: Bits(1)},
			{Name: "irq", Direction: DirOut, Width: Bits(1)},
		},
		Clocks: []Clock{{Name: "clk"}},
		Resets: []Reset{{Name: "rst_n", Polarity: ActiveLow}},
		BusInterfaces: []BusInterface{{
			Name:           "S_AXI",
			Type:           "AXI4L",
			Mode:           ModeSlave,
			PhysicalPrefix: "s_axi_",
			MatchedPorts: []Port{
				{Name: "s_axi_awaddr", Direction: DirIn, Width: Bits(32)},
				{Name: "s_axi_awvalid", Direction: DirIn, Width: Bits(1)},
			},
		}},
	}
}

func TestRolesPartition(t *testing.T) {
	m := registersModule()
	roles := m.Roles()

	require.Len(t, roles, len(m.Ports))
	assert.Equal(t, RoleClock, roles["clk"])
	assert.Equal(t, RoleReset, roles["rst_n"])
	assert.Equal(t, RoleBus, roles["s_axi_awaddr"])
	assert.Equal(t, RoleBus, roles["s_axi_awvalid"])
	assert.Equal(t, RoleUnclassified, roles["irq"])
}

func TestRolesFirstClaimWins(t *testing.T) {
	m := &Module{
		Name:   "m",
		Ports:  []Port{{Name: "clk", Direction: DirIn, Width: Bits(1)}},
		Clocks: []Clock{{Name: "clk"}},
		BusInterfaces: []BusInterface{{
			Name: "X", Type: "AXI4L", Mode: ModeSlave, PhysicalPrefix: "x_",
			MatchedPorts: []Port{{Name: "clk", Direction: DirIn, Width: Bits(1)}},
		}},
	}
	assert.Equal(t, RoleClock, m.Roles()["clk"])
}

func TestUnclassifiedPorts(t *testing.T) {
	m := registersModule()
	un := m.UnclassifiedPorts()
	require.Len(t, un, 1)
	assert.Equal(t, "irq", un[0].Name)
}

func TestPortLookupCaseInsensitive(t *testing.T) {
	m := registersModule()
	p, ok := m.Port("RST_N")
	require.True(t, ok)
	assert.Equal(t, "rst_n", p.Name)

	_, ok = m.Port("missing")
	assert.False(t, ok)
}

func TestGenericLookup(t *testing.T) {
	m := &Module{Generics: []Generic{{Name: "WIDTH", Type: "natural", Default: "8"}}}
	g, ok := m.Generic("width")
	require.True(t, ok)
	assert.Equal(t, "WIDTH", g.Name)
	assert.True(t, g.HasDefault())
}
