package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"segtopo/pkg/config"
	"segtopo/pkg/logging"
	"segtopo/pkg/qc"
	"segtopo/pkg/report"
)

const defaultConfigPath = "segtopo.yaml"

// computeFlags mirrors the config keys that can be overridden per run.
type computeFlags struct {
	configPath     string
	label          int32
	labelUpper     int32
	minPersistence float64
	mode           string
	noCrop         bool
	format         string
	shape          []int
	dtype          string
	inputFormat    string
	workers        int
	crossCheck     bool
	verbose        bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "segtopo",
		Short: "Topological quality control for 3D segmentations",
		Long: `segtopo computes the Betti numbers and Euler characteristic of one
tissue of a 3D label map, e.g. the cortical gray matter of a fetal brain
segmentation, to flag spurious components, tunnels and cavities.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newComputeCmd(), newConfigCmd())
	return root
}

func newComputeCmd() *cobra.Command {
	var f computeFlags
	cmd := &cobra.Command{
		Use:   "compute [path]",
		Short: "Compute Betti numbers and Euler characteristic of a segmentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, &f, args[0])
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", defaultConfigPath, "YAML configuration file")
	fs.Int32VarP(&f.label, "label", "l", 2, "label treated as foreground (lower bound of the range)")
	fs.Int32Var(&f.labelUpper, "label-upper", 2, "upper bound of the foreground label range (defaults to --label)")
	fs.Float64Var(&f.minPersistence, "min-persistence", 0.99, "minimum persistence for a pair to count as a feature")
	fs.StringVar(&f.mode, "mode", "foreground", "complex construction: foreground or dual")
	fs.BoolVar(&f.noCrop, "no-crop", false, "compute on the full volume instead of the padded bounding box")
	fs.StringVarP(&f.format, "format", "o", "text", "output format: text, yaml or json")
	fs.IntSliceVar(&f.shape, "shape", nil, "raw volume extent as axis0,axis1,axis2")
	fs.StringVar(&f.dtype, "dtype", "uint16", "raw volume sample type")
	fs.StringVar(&f.inputFormat, "input-format", "auto", "input format: auto, nifti, raw or slices")
	fs.IntVarP(&f.workers, "workers", "w", 0, "worker goroutines (0 keeps the configured value)")
	fs.BoolVar(&f.crossCheck, "cross-check", false, "verify Betti numbers against boundary-matrix ranks (small volumes only)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage segtopo configuration files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}

func runCompute(cmd *cobra.Command, f *computeFlags, input string) error {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, f, cfg); err != nil {
		return err
	}

	logging.SetLogger(logging.New(cmd.ErrOrStderr(), cfg.Output.Verbose))

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	params, err := qc.ParamsFromConfig(cfg, input)
	if err != nil {
		return err
	}

	e := qc.NewEvaluator(params)
	if err := e.Process(); err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), e.Result(), format)
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, f *computeFlags, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("label") {
		cfg.Segmentation.LowerLabel = f.label
		if !fs.Changed("label-upper") {
			cfg.Segmentation.UpperLabel = f.label
		}
	}
	if fs.Changed("label-upper") {
		cfg.Segmentation.UpperLabel = f.labelUpper
	}
	if fs.Changed("min-persistence") {
		cfg.Topology.MinPersistence = f.minPersistence
	}
	if fs.Changed("mode") {
		cfg.Topology.Mode = f.mode
	}
	if f.noCrop {
		cfg.Crop.Enabled = false
	}
	if fs.Changed("format") {
		cfg.Output.Format = f.format
	}
	if fs.Changed("shape") {
		if len(f.shape) != 3 {
			return fmt.Errorf("--shape needs three extents, got %d", len(f.shape))
		}
		copy(cfg.Input.Shape[:], f.shape)
	}
	if fs.Changed("dtype") {
		cfg.Input.DType = f.dtype
	}
	if fs.Changed("input-format") {
		cfg.Input.Format = f.inputFormat
	}
	if f.workers > 0 {
		cfg.Topology.Workers = f.workers
	}
	if f.crossCheck {
		cfg.Topology.CrossCheck = true
	}
	if f.verbose {
		cfg.Output.Verbose = true
	}
	return nil
}
