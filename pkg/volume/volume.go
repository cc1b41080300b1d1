// Package volume reads labeled segmentations from disk into models.Volume.
//
// Supported sources are single-file NIfTI-1 images (optionally gzipped), raw
// sample dumps with an explicit shape and sample type, and directories of 2D
// label slices.
package volume

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"segtopo/internal/models"
	"segtopo/pkg/logging"
)

var (
	// ErrUnsupportedFormat is returned for files the loaders cannot read.
	ErrUnsupportedFormat = errors.New("volume: unsupported format")
	// ErrUnsupportedDatatype is returned for unknown sample types.
	ErrUnsupportedDatatype = errors.New("volume: unsupported sample type")
	// ErrShapeMismatch is returned when the data does not fit the declared shape.
	ErrShapeMismatch = errors.New("volume: data does not match shape")
)

// Format identifies an on-disk layout.
type Format int

const (
	FormatAuto Format = iota
	FormatNIfTI
	FormatRaw
	FormatSlices
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatNIfTI:
		return "nifti"
	case FormatRaw:
		return "raw"
	case FormatSlices:
		return "slices"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "nifti", "nii":
		return FormatNIfTI, nil
	case "raw":
		return FormatRaw, nil
	case "slices":
		return FormatSlices, nil
	}
	return 0, fmt.Errorf("format %q: %w", s, ErrUnsupportedFormat)
}

// DetectFormat guesses the format of path from its kind and extension.
func DetectFormat(path string) (Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return FormatSlices, nil
	}
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".nii"), strings.HasSuffix(name, ".nii.gz"):
		return FormatNIfTI, nil
	case strings.HasSuffix(name, ".raw"), strings.HasSuffix(name, ".bin"):
		return FormatRaw, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Options selects and parameterizes a loader.
type Options struct {
	Format Format
	// Raw describes the samples of a raw file. Ignored for other formats.
	Raw RawSpec
	// Workers bounds concurrent slice decoding. Zero means runtime.NumCPU().
	Workers int
}

// Load reads the segmentation at path.
func Load(path string, opts Options) (*models.Volume, error) {
	format := opts.Format
	if format == FormatAuto {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}

	var (
		vol *models.Volume
		err error
	)
	switch format {
	case FormatNIfTI:
		vol, err = LoadNIfTI(path)
	case FormatRaw:
		vol, err = LoadRaw(path, opts.Raw)
	case FormatSlices:
		vol, err = LoadSlices(path, opts.Workers)
	default:
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s volume %s: %w", format, path, err)
	}

	logging.Logger().Info("volume loaded",
		"path", path,
		"format", format.String(),
		"shape", vol.Shape,
		"spacing", vol.Spacing)
	return vol, nil
}
