// Package config provides configuration loading and management for segtopo.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Input describes how the segmentation is read
	Input struct {
		// Format is one of auto, nifti, raw or slices
		Format string `yaml:"format"`

		// Shape is the (axis0, axis1, axis2) extent of a raw volume
		Shape [3]int `yaml:"shape"`

		// DType is the sample type of a raw volume, e.g. uint16
		DType string `yaml:"dtype"`

		// BigEndian selects the byte order of a raw volume
		BigEndian bool `yaml:"bigEndian"`
	} `yaml:"input"`

	// Segmentation selects the tissue to analyze
	Segmentation struct {
		// LowerLabel and UpperLabel bound the inclusive label range treated as foreground
		LowerLabel int32 `yaml:"lowerLabel"`
		UpperLabel int32 `yaml:"upperLabel"`
	} `yaml:"segmentation"`

	// Crop parameters
	Crop struct {
		// Enabled crops the volume to the padded foreground bounding box
		Enabled bool `yaml:"enabled"`

		// PadBefore and PadAfter are the margins added below and above the bounding box
		PadBefore int `yaml:"padBefore"`
		PadAfter  int `yaml:"padAfter"`
	} `yaml:"crop"`

	// Topology engine parameters
	Topology struct {
		// MinPersistence is the persistence a finite pair needs to count as a feature
		MinPersistence float64 `yaml:"minPersistence"`

		// CoefficientField is the prime field of the homology; only 2 is supported
		CoefficientField int `yaml:"coefficientField"`

		// Mode is foreground or dual
		Mode string `yaml:"mode"`

		// Workers bounds the goroutines used for complex construction and slice decoding
		Workers int `yaml:"workers"`

		// CrossCheck verifies the Betti numbers against boundary-matrix ranks on small complexes
		CrossCheck bool `yaml:"crossCheck"`
	} `yaml:"topology"`

	// Output parameters
	Output struct {
		// Format is text, yaml or json
		Format string `yaml:"format"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Input.Format = "auto"
	cfg.Input.DType = "uint16"

	// Label 2 is the cortical gray matter in the FeTA label maps
	cfg.Segmentation.LowerLabel = 2
	cfg.Segmentation.UpperLabel = 2

	cfg.Crop.Enabled = true
	cfg.Crop.PadBefore = 2
	cfg.Crop.PadAfter = 3

	cfg.Topology.MinPersistence = 0.99
	cfg.Topology.CoefficientField = 2
	cfg.Topology.Mode = "foreground"
	cfg.Topology.Workers = runtime.NumCPU()

	cfg.Output.Format = "text"
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig reads the YAML file at configPath over DefaultConfig, so keys
// absent from the file keep their defaults. A missing file is not an error:
// segtopo runs on defaults when no segtopo.yaml exists.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories as needed.
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile backs `segtopo config init`: it writes the
// defaults to configPath as a starting point for editing.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
