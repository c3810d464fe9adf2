package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bleviet/ipcraft/internal/config"
)

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestScanDirectory(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"rtl/counter.vhd": counterVHDL,
		"rtl/axil_regs.v": axilRegsVerilog,
		"docs/notes.md":   "not hdl",
	})
	a := newAnalyzer(t)

	reports, err := a.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// resolution sorts paths, so axil_regs.v comes first
	assert.Equal(t, "axil_regs", reports[0].Module.Name)
	assert.Equal(t, "counter", reports[1].Module.Name)
	for _, rep := range reports {
		assert.Empty(t, rep.Error)
		assert.NotNil(t, rep.Module)
	}
}

func TestScanFileRoots(t *testing.T) {
	dir := writeSources(t, map[string]string{"counter.vhd": counterVHDL})
	a := newAnalyzer(t)
	path := filepath.Join(dir, "counter.vhd")

	reports, err := a.Scan(context.Background(), []string{path, path})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "counter", reports[0].Module.Name)
}

func TestScanKeepsGoingPastBadFiles(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"good.vhd": counterVHDL,
		"broken.v": "// no module in here\n",
	})
	a := newAnalyzer(t)

	reports, err := a.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byName := make(map[string]Report)
	for _, rep := range reports {
		byName[filepath.Base(rep.Path)] = rep
	}
	assert.NotEmpty(t, byName["broken.v"].Error)
	assert.Nil(t, byName["broken.v"].Module)
	assert.Empty(t, byName["good.vhd"].Error)
	require.NotNil(t, byName["good.vhd"].Module)
	assert.Equal(t, "counter", byName["good.vhd"].Module.Name)
}

func TestScanRespectsIgnorePatterns(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"core.vhd":    counterVHDL,
		"tb_core.vhd": counterVHDL,
	})
	cfg := config.DefaultConfig()
	cfg.Scan.IgnorePatterns = []string{"tb_*"}
	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	reports, err := a.Scan(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, filepath.Join(dir, "core.vhd"), reports[0].Path)
}

func TestScanMissingRoot(t *testing.T) {
	a := newAnalyzer(t)
	_, err := a.Scan(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	assert.ErrorContains(t, err, "scan root")
}

func TestScanCanceledContext(t *testing.T) {
	dir := writeSources(t, map[string]string{"counter.vhd": counterVHDL})
	a := newAnalyzer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Scan(ctx, []string{dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParallelismBounds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scan.MaxParallelFiles = 2
	a, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 2, a.parallelism(8))
	assert.Equal(t, 1, a.parallelism(1))
	assert.Equal(t, 1, a.parallelism(0))
}
