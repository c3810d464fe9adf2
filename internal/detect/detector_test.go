package detect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bleviet/ipcraft/internal/buslib"
	"github.com/bleviet/ipcraft/internal/model"
)

func newDetector(t *testing.T, opts Options) *Detector {
	t.Helper()
	lib, err := buslib.Default()
	require.NoError(t, err)
	return New(lib, opts, zerolog.Nop())
}

// busPorts expands a library definition into physical ports. Initiator
// keeps the definition's master-perspective directions; a responder
// sees them inverted. Clock and reset lines stay inputs on both sides.
func busPorts(t *testing.T, key, prefix string, initiator bool) []model.Port {
	t.Helper()
	lib, err := buslib.Default()
	require.NoError(t, err)
	def, ok := lib.Get(key)
	require.True(t, ok)

	ports := make([]model.Port, 0, len(def.Ports))
	for _, pd := range def.Ports {
		dir := pd.Direction
		if !initiator && pd.Name != "ACLK" && pd.Name != "ARESETN" {
			dir = opposite(dir)
		}
		width := pd.Width
		if width == 0 {
			width = 32
		}
		ports = append(ports, model.Port{
			Name:      prefix + strings.ToLower(pd.Name),
			Direction: dir,
			Width:     model.Bits(width),
		})
	}
	return ports
}

func TestDetectAXI4LiteSlave(t *testing.T) {
	d := newDetector(t, Options{})
	ports := busPorts(t, "AXI4L", "s_axi_", false)
	require.Len(t, ports, 21)

	det := d.Detect(ports)
	require.Len(t, det.Interfaces, 1)

	iface := det.Interfaces[0]
	assert.Equal(t, "S_AXI", iface.Name)
	assert.Equal(t, "AXI4L", iface.Type)
	assert.Equal(t, model.ModeSlave, iface.Mode)
	assert.Equal(t, "s_axi_", iface.PhysicalPrefix)
	assert.Len(t, iface.MatchedPorts, 21)

	// AXI4 requires burst signals this group lacks.
	require.Len(t, det.Candidates, 2)
	assert.True(t, det.Candidates[0].Accepted)
	assert.Equal(t, "AXI4L", det.Candidates[0].BusType)
	assert.False(t, det.Candidates[1].Accepted)
	assert.Equal(t, "AXI4", det.Candidates[1].BusType)
	assert.Contains(t, det.Candidates[1].Reason, "below")
}

func TestDetectAXI4Master(t *testing.T) {
	d := newDetector(t, Options{})
	ports := busPorts(t, "AXI4", "m_axi_", true)

	det := d.Detect(ports)
	require.Len(t, det.Interfaces, 1)

	iface := det.Interfaces[0]
	assert.Equal(t, "M_AXI", iface.Name)
	assert.Equal(t, "AXI4", iface.Type)
	assert.Equal(t, model.ModeMaster, iface.Mode)
	assert.Len(t, iface.MatchedPorts, len(ports))

	// Both AXI variants pass threshold; the full one outscores.
	var lite *Candidate
	for i := range det.Candidates {
		if det.Candidates[i].BusType == "AXI4L" {
			lite = &det.Candidates[i]
		}
	}
	require.NotNil(t, lite)
	assert.False(t, lite.Accepted)
	assert.Equal(t, "outscored by AXI4", lite.Reason)
}

func TestDetectStreamModes(t *testing.T) {
	d := newDetector(t, Options{})

	det := d.Detect(busPorts(t, "AXIS", "m_axis_", true))
	require.Len(t, det.Interfaces, 1)
	assert.Equal(t, model.ModeSource, det.Interfaces[0].Mode)
	assert.Equal(t, "M_AXIS", det.Interfaces[0].Name)

	det = d.Detect(busPorts(t, "AXIS", "s_axis_", false))
	require.Len(t, det.Interfaces, 1)
	assert.Equal(t, model.ModeSink, det.Interfaces[0].Mode)

	det = d.Detect(busPorts(t, "AVALON_ST", "aso_", true))
	require.Len(t, det.Interfaces, 1)
	assert.Equal(t, "AVALON_ST", det.Interfaces[0].Type)
	assert.Equal(t, model.ModeSource, det.Interfaces[0].Mode)
}

func TestDetectAvalonSlave(t *testing.T) {
	d := newDetector(t, Options{})
	det := d.Detect(busPorts(t, "AVALON_MM", "avs_", false))
	require.Len(t, det.Interfaces, 1)

	iface := det.Interfaces[0]
	assert.Equal(t, "AVALON_MM", iface.Type)
	assert.Equal(t, model.ModeSlave, iface.Mode)
	assert.Equal(t, "AVS", iface.Name)
}

func TestDetectTwoInstances(t *testing.T) {
	// Shared clocking lives outside the per-instance prefixes, so the
	// instance sets carry only the channel signals.
	trim := func(ports []model.Port) []model.Port {
		var out []model.Port
		for _, p := range ports {
			if strings.HasSuffix(p.Name, "aclk") || strings.HasSuffix(p.Name, "aresetn") {
				continue
			}
			out = append(out, p)
		}
		return out
	}
	ctl := trim(busPorts(t, "AXI4L", "s_axi_ctl_", false))
	dsp := trim(busPorts(t, "AXI4L", "s_axi_dsp_", false))

	d := newDetector(t, Options{})
	det := d.Detect(append(ctl, dsp...))
	require.Len(t, det.Interfaces, 2)

	assert.Equal(t, "S_AXI_CTL", det.Interfaces[0].Name)
	assert.Equal(t, "S_AXI_DSP", det.Interfaces[1].Name)

	seen := make(map[string]int)
	for _, iface := range det.Interfaces {
		assert.Equal(t, "AXI4L", iface.Type)
		assert.Len(t, iface.MatchedPorts, 19)
		for _, p := range iface.MatchedPorts {
			seen[p.Name]++
		}
	}
	for name, n := range seen {
		assert.Equal(t, 1, n, "port %s claimed %d times", name, n)
	}
}

func TestDetectThresholdMonotonicity(t *testing.T) {
	var ports []model.Port
	for _, p := range busPorts(t, "AXI4L", "s_axi_", false) {
		if p.Name == "s_axi_bready" {
			continue
		}
		ports = append(ports, p)
	}

	det := newDetector(t, Options{}).Detect(ports)
	require.Len(t, det.Interfaces, 1, "15 of 16 required must pass the default threshold")

	det = newDetector(t, Options{MinRequiredRatio: 1.0}).Detect(ports)
	assert.Empty(t, det.Interfaces)
	require.NotEmpty(t, det.Candidates)
	assert.Contains(t, det.Candidates[0].Reason, "below 1.00")
}

func TestDetectTieBreak(t *testing.T) {
	src := `
ZULU:
  kind: memory_mapped
  ports:
    - { name: data, direction: out }
    - { name: valid, direction: out }
ALPHA:
  kind: memory_mapped
  ports:
    - { name: data, direction: out }
    - { name: valid, direction: out }
`
	lib, err := buslib.Parse([]byte(src))
	require.NoError(t, err)

	ports := named("foo_bus_data", "foo_bus_valid")

	det := New(lib, Options{}, zerolog.Nop()).Detect(ports)
	require.Len(t, det.Interfaces, 1)
	assert.Equal(t, "ZULU", det.Interfaces[0].Type)
	// No designated signal in either definition: responder default.
	assert.Equal(t, model.ModeSlave, det.Interfaces[0].Mode)

	det = New(lib, Options{TieBreak: TieBreakLexical}, zerolog.Nop()).Detect(ports)
	require.Len(t, det.Interfaces, 1)
	assert.Equal(t, "ALPHA", det.Interfaces[0].Type)
}

func TestDetectNothing(t *testing.T) {
	d := newDetector(t, Options{})

	assert.Empty(t, d.Detect(nil).Interfaces)

	det := d.Detect(named("data", "valid_flag", "irq"))
	assert.Empty(t, det.Interfaces)
	assert.Empty(t, det.Candidates)
}

func TestDetectLogsAmbiguity(t *testing.T) {
	lib, err := buslib.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	d := New(lib, Options{}, zerolog.New(&buf))

	// A full AXI4 set clears the threshold for AXI4L too.
	d.Detect(busPorts(t, "AXI4", "m_axi_", true))

	assert.True(t, bytes.Contains(buf.Bytes(), []byte("ambiguous bus match resolved by score")))
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("bus interface detected")))
}
