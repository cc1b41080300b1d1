package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segtopo/internal/phantom"
	"segtopo/pkg/config"
	"segtopo/pkg/logging"
	"segtopo/pkg/report"
)

// writeRaw stores v as uint8 labels, foreground voxels carrying label.
func writeRaw(t *testing.T, v *phantom.Volume, label uint8) string {
	t.Helper()
	buf := make([]byte, len(v.Data))
	for i, b := range v.Data {
		buf[i] = b * label
	}
	path := filepath.Join(t.TempDir(), "seg.raw")
	require.NoError(t, os.WriteFile(path, buf, 0644))
	return path
}

func shapeArg(s [3]int) string {
	return fmt.Sprintf("%d,%d,%d", s[0], s[1], s[2])
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() { logging.SetLogger(nil) })
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestComputeRawTextReport(t *testing.T) {
	v := phantom.Shell(5, 1, 2)
	path := writeRaw(t, v, 3)
	out, _, err := execute(t, "compute", path,
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--dtype", "uint8", "--shape", shapeArg(v.Shape), "--label", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "0-dimensional Betti number (# of connected components)   : 1")
	assert.Contains(t, out, "1-dimensional Betti number (# of tunnel holes)           : 0")
	assert.Contains(t, out, "2-dimensional Betti number (# of cavity holes)           : 1")
	assert.Contains(t, out, "Euler characteristics                                    : 2")
}

func TestComputeJSONWithConfigFile(t *testing.T) {
	v := phantom.Ring(6, 2, 2, 1)
	path := writeRaw(t, v, 4)

	cfg := config.DefaultConfig()
	cfg.Input.Shape = v.Shape
	cfg.Input.DType = "uint8"
	cfg.Segmentation.LowerLabel = 4
	cfg.Segmentation.UpperLabel = 4
	cfgPath := filepath.Join(t.TempDir(), "segtopo.yaml")
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	out, logs, err := execute(t, "compute", path, "-c", cfgPath, "-o", "json", "--mode", "dual", "-v")
	require.NoError(t, err)

	var s report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, [3]int{1, 1, 0}, s.Betti)
	assert.Equal(t, 0, s.Euler)
	assert.Equal(t, "dual", s.Mode)
	assert.Equal(t, [2]int32{4, 4}, s.Labels)
	assert.Contains(t, logs, "level=DEBUG")
}

func TestComputeCrossCheckAgrees(t *testing.T) {
	v := phantom.Shell(4, 1, 0)
	path := writeRaw(t, v, 2)

	out, _, err := execute(t, "compute", path,
		"-c", filepath.Join(t.TempDir(), "none.yaml"),
		"--dtype", "uint8", "--shape", shapeArg(v.Shape), "--cross-check", "-o", "json")
	require.NoError(t, err)

	var s report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.True(t, s.Checked)
	assert.Equal(t, [3]int{1, 0, 1}, s.Betti)
}

func TestComputeErrors(t *testing.T) {
	v := phantom.Box([3]int{2, 2, 2}, 1)
	path := writeRaw(t, v, 2)
	noCfg := filepath.Join(t.TempDir(), "none.yaml")

	for name, args := range map[string][]string{
		"missing shape": {"compute", path, "-c", noCfg, "--dtype", "uint8"},
		"short shape":   {"compute", path, "-c", noCfg, "--dtype", "uint8", "--shape", "4,4"},
		"bad mode":      {"compute", path, "-c", noCfg, "--dtype", "uint8", "--shape", "4,4,4", "--mode", "alpha"},
		"bad format":    {"compute", path, "-c", noCfg, "--dtype", "uint8", "--shape", "4,4,4", "-o", "xml"},
		"negative":      {"compute", path, "-c", noCfg, "--dtype", "uint8", "--shape", "4,4,4", "--min-persistence", "-1"},
		"no args":       {"compute"},
	} {
		_, _, err := execute(t, args...)
		assert.Error(t, err, name)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "segtopo.yaml")
	out, _, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}
