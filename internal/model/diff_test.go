package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeltaNoChange(t *testing.T) {
	m := registersModule()
	d := ComputeDelta(m, m)
	assert.True(t, d.Empty())
}

func TestComputeDeltaAddedRemoved(t *testing.T) {
	prev := &Module{
		Name: "m",
		Ports: []Port{
			{Name: "clk", Direction: DirIn, Width: Bits(1)},
			{Name: "old", Direction: DirOut, Width: Bits(4)},
		},
	}
	next := &Module{
		Name: "m",
		Ports: []Port{
			{Name: "clk", Direction: DirIn, Width: Bits(1)},
			{Name: "fresh", Direction: DirIn, Width: Bits(2)},
		},
	}

	d := ComputeDelta(prev, next)
	require.False(t, d.Empty())
	require.Len(t, d.Added.Ports, 1)
	assert.Equal(t, "fresh", d.Added.Ports[0].Name)
	require.Len(t, d.Removed.Ports, 1)
	assert.Equal(t, "old", d.Removed.Ports[0].Name)
}

func TestComputeDeltaWidthChangeShowsBothSides(t *testing.T) {
	prev := &Module{Ports: []Port{{Name: "data", Direction: DirIn, Width: Bits(8)}}}
	next := &Module{Ports: []Port{{Name: "data", Direction: DirIn, Width: Bits(16)}}}

	d := ComputeDelta(prev, next)
	require.Len(t, d.Added.Ports, 1)
	require.Len(t, d.Removed.Ports, 1)
	assert.Equal(t, Bits(16), d.Added.Ports[0].Width)
	assert.Equal(t, Bits(8), d.Removed.Ports[0].Width)
}

func TestComputeDeltaBusInterfaces(t *testing.T) {
	prev := &Module{}
	next := registersModule()

	d := ComputeDelta(prev, next)
	require.Len(t, d.Added.BusInterfaces, 1)
	assert.Equal(t, "S_AXI", d.Added.BusInterfaces[0].Name)
	assert.Empty(t, d.Removed.BusInterfaces)
	require.Len(t, d.Added.Clocks, 1)
	require.Len(t, d.Added.Resets, 1)
}
