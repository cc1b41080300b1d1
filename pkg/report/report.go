// Package report renders QC results for people and for tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"segtopo/pkg/qc"
)

// Format selects the rendering.
type Format int

const (
	Text Format = iota
	YAML
	JSON
)

// ParseFormat accepts text, yaml or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return Text, nil
	case "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	}
	return 0, fmt.Errorf("report: unknown format %q (want text, yaml or json)", s)
}

// Summary is the machine-readable form of a qc.Result.
type Summary struct {
	Input      string     `yaml:"input" json:"input"`
	Labels     [2]int32   `yaml:"labels,flow" json:"labels"`
	Shape      [3]int     `yaml:"shape,flow" json:"shape"`
	Spacing    [3]float64 `yaml:"spacing,flow" json:"spacing"`
	Foreground int        `yaml:"foreground" json:"foreground"`
	Cropped    bool       `yaml:"cropped" json:"cropped"`
	RegionMin  [3]int     `yaml:"regionMin,flow" json:"regionMin"`
	RegionMax  [3]int     `yaml:"regionMax,flow" json:"regionMax"`
	Mode       string     `yaml:"mode" json:"mode"`
	Betti      [3]int     `yaml:"betti,flow" json:"betti"`
	Euler      int        `yaml:"euler" json:"euler"`
	Cells      [4]int     `yaml:"cells,flow" json:"cells"`
	Pairs      int        `yaml:"pairs" json:"pairs"`
	Filtered   int        `yaml:"filtered" json:"filtered"`
	Checked    bool       `yaml:"crossChecked" json:"crossChecked"`
	Seconds    float64    `yaml:"seconds" json:"seconds"`
}

// Summarize flattens r.
func Summarize(r *qc.Result) Summary {
	return Summary{
		Input:      r.Input,
		Labels:     [2]int32{r.Labels.Lower, r.Labels.Upper},
		Shape:      r.Shape,
		Spacing:    r.Spacing,
		Foreground: r.Foreground,
		Cropped:    r.Cropped,
		RegionMin:  r.Region.Min,
		RegionMax:  r.Region.Max,
		Mode:       r.Topology.Mode.String(),
		Betti:      r.Topology.Betti,
		Euler:      r.Topology.Euler,
		Cells:      r.Topology.Cells,
		Pairs:      r.Topology.Pairs,
		Filtered:   r.Topology.Filtered,
		Checked:    r.Topology.CrossChecked,
		Seconds:    r.Elapsed.Seconds(),
	}
}

// Write renders r to w.
func Write(w io.Writer, r *qc.Result, f Format) error {
	switch f {
	case Text:
		return writeText(w, r)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Summarize(r)); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Summarize(r))
	}
	return fmt.Errorf("report: unknown format %d", int(f))
}

func writeText(w io.Writer, r *qc.Result) error {
	b := r.Topology.Betti
	lines := []string{
		fmt.Sprintf("Computation of the Betti number for: %s", r.Input),
		fmt.Sprintf("0-dimensional Betti number (# of connected components)   : %d", b[0]),
		fmt.Sprintf("1-dimensional Betti number (# of tunnel holes)           : %d", b[1]),
		fmt.Sprintf("2-dimensional Betti number (# of cavity holes)           : %d", b[2]),
		fmt.Sprintf("Euler characteristics                                    : %d", r.Topology.Euler),
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
