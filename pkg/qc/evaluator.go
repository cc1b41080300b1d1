// Package qc runs the segmentation quality-control pipeline: load a label
// map, isolate one tissue, crop around it and compute its topology.
package qc

import (
	"errors"
	"fmt"
	"time"

	"segtopo/internal/models"
	"segtopo/pkg/config"
	"segtopo/pkg/cubical"
	"segtopo/pkg/logging"
	"segtopo/pkg/roi"
	"segtopo/pkg/topology"
	"segtopo/pkg/volume"
)

// Params holds everything one evaluation needs. Nothing is read from global
// state.
type Params struct {
	// InputPath is the segmentation file or slice directory.
	InputPath string

	// Load selects the volume loader.
	Load volume.Options

	// Threshold selects the tissue labels treated as foreground.
	Threshold roi.Threshold

	// Crop enables cropping to the padded foreground bounding box.
	Crop    bool
	Padding roi.Padding

	// Topology configures the engine.
	Topology topology.Options
}

// ParamsFromConfig translates a configuration into Params for input.
func ParamsFromConfig(cfg *config.Config, input string) (*Params, error) {
	format, err := volume.ParseFormat(cfg.Input.Format)
	if err != nil {
		return nil, err
	}
	p := &Params{
		InputPath: input,
		Load: volume.Options{
			Format:  format,
			Workers: cfg.Topology.Workers,
			Raw:     volume.RawSpec{Shape: cfg.Input.Shape, BigEndian: cfg.Input.BigEndian},
		},
		Threshold: roi.Threshold{Lower: cfg.Segmentation.LowerLabel, Upper: cfg.Segmentation.UpperLabel},
		Crop:      cfg.Crop.Enabled,
		Padding:   roi.Padding{Before: cfg.Crop.PadBefore, After: cfg.Crop.PadAfter},
	}
	if p.Load.Raw.DType, err = volume.ParseDType(cfg.Input.DType); err != nil {
		return nil, err
	}

	p.Topology = topology.DefaultOptions()
	p.Topology.MinPersistence = cfg.Topology.MinPersistence
	p.Topology.CoefficientField = cfg.Topology.CoefficientField
	p.Topology.Workers = cfg.Topology.Workers
	p.Topology.CrossCheck = cfg.Topology.CrossCheck
	if p.Topology.Mode, err = cubical.ParseMode(cfg.Topology.Mode); err != nil {
		return nil, err
	}
	if err := p.Topology.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Result describes one evaluated segmentation.
type Result struct {
	Input   string
	Shape   [3]int
	Spacing [3]float64
	Labels  roi.Threshold

	// Foreground is the number of voxels carrying a selected label.
	Foreground int

	// Cropped reports whether Region was cut out of the volume; Region is the
	// whole volume otherwise.
	Cropped bool
	Region  roi.Box

	Topology *topology.Result
	Elapsed  time.Duration
}

// Evaluator runs the pipeline for one set of Params.
type Evaluator struct {
	params *Params
	result *Result
}

// NewEvaluator creates an evaluator for params.
func NewEvaluator(params *Params) *Evaluator {
	return &Evaluator{params: params}
}

// Process loads the input and evaluates it.
func (e *Evaluator) Process() error {
	vol, err := volume.Load(e.params.InputPath, e.params.Load)
	if err != nil {
		return err
	}
	res, err := e.Evaluate(vol)
	if err != nil {
		return err
	}
	res.Input = e.params.InputPath
	e.result = res
	return nil
}

// Result returns the outcome of the last successful Process call.
func (e *Evaluator) Result() *Result {
	return e.result
}

// Evaluate runs binarize, crop and compute on an in-memory volume.
func (e *Evaluator) Evaluate(vol *models.Volume) (*Result, error) {
	log := logging.Logger()
	start := time.Now()

	grid, err := roi.Binarize(vol, e.params.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize labels: %w", err)
	}
	res := &Result{
		Shape:      vol.Shape,
		Spacing:    vol.Spacing,
		Labels:     e.params.Threshold,
		Foreground: grid.ForegroundCount(),
		Region:     roi.Box{Max: vol.Shape},
	}
	log.Info("labels binarized",
		"lower", e.params.Threshold.Lower,
		"upper", e.params.Threshold.Upper,
		"foreground", res.Foreground)

	if e.params.Crop {
		cropped, box, err := roi.Crop(grid, e.params.Padding)
		switch {
		case errors.Is(err, roi.ErrEmptyForeground):
			log.Warn("no foreground voxels, computing on the full volume")
		case err != nil:
			return nil, fmt.Errorf("failed to crop to region of interest: %w", err)
		default:
			grid, res.Region, res.Cropped = cropped, box, true
			log.Info("cropped to region of interest", "min", box.Min, "max", box.Max, "shape", box.Shape())
		}
	}

	res.Topology, err = topology.Compute(grid, e.params.Topology)
	if err != nil {
		return nil, fmt.Errorf("failed to compute topological features: %w", err)
	}
	res.Elapsed = time.Since(start)

	log.Info("topological features computed",
		"betti", res.Topology.Betti,
		"euler", res.Topology.Euler,
		"elapsed", res.Elapsed)
	return res, nil
}
