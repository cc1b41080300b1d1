package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"segtopo/pkg/cubical"
	"segtopo/pkg/qc"
	"segtopo/pkg/roi"
	"segtopo/pkg/topology"
)

func sampleResult() *qc.Result {
	return &qc.Result{
		Input:      "sub-042_dseg.nii.gz",
		Shape:      [3]int{256, 256, 256},
		Spacing:    [3]float64{0.8, 0.8, 0.8},
		Labels:     roi.Threshold{Lower: 2, Upper: 2},
		Foreground: 1234,
		Cropped:    true,
		Region:     roi.Box{Min: [3]int{10, 11, 12}, Max: [3]int{90, 91, 92}},
		Topology: &topology.Result{
			Features: topology.NewFeatures([3]int{1, 3, 1}),
			Mode:     cubical.ModeForeground,
			Cells:    [4]int{10, 20, 12, 1},
			Pairs:    21,
			Filtered: 16,
		},
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResult(), Text))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Computation of the Betti number for: sub-042_dseg.nii.gz", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ": 1"))
	assert.True(t, strings.HasSuffix(lines[2], ": 3"))
	assert.True(t, strings.HasSuffix(lines[3], ": 1"))
	assert.Equal(t, "Euler characteristics                                    : -1", lines[4])
}

func TestWriteYAMLAndJSONAgree(t *testing.T) {
	var y, j bytes.Buffer
	require.NoError(t, Write(&y, sampleResult(), YAML))
	require.NoError(t, Write(&j, sampleResult(), JSON))

	var fromYAML, fromJSON Summary
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &fromYAML))
	require.NoError(t, json.Unmarshal(j.Bytes(), &fromJSON))
	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, [3]int{1, 3, 1}, fromJSON.Betti)
	assert.Equal(t, -1, fromJSON.Euler)
	assert.Equal(t, "foreground", fromJSON.Mode)
	assert.Equal(t, 1.5, fromJSON.Seconds)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Text, "TEXT": Text, "yml": YAML, "json": JSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
	assert.Error(t, Write(&bytes.Buffer{}, sampleResult(), Format(9)))
}
