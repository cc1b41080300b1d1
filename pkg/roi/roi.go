// Package roi isolates a tissue label and crops the volume around it.
//
// Cropping only saves work for the topology engine. It is valid as long as no
// foreground voxel is cut away, which Crop checks before returning.
package roi

import (
	"errors"
	"fmt"

	"segtopo/internal/models"
	"segtopo/pkg/cubical"
)

var (
	// ErrEmptyForeground is returned when no voxel carries the selected label.
	ErrEmptyForeground = errors.New("roi: segmentation has no foreground voxels")
	// ErrCropClipsForeground is returned when a crop would drop foreground.
	ErrCropClipsForeground = errors.New("roi: crop clips foreground voxels")
	// ErrLabelRange is returned when the lower label exceeds the upper label.
	ErrLabelRange = errors.New("roi: lower label exceeds upper label")
	// ErrRegion is returned for a region outside the grid.
	ErrRegion = errors.New("roi: region extends beyond grid boundaries")
)

// Threshold selects labels in the inclusive range [Lower, Upper].
type Threshold struct {
	Lower, Upper int32
}

// Binarize marks voxels whose label lies in th as foreground.
func Binarize(v *models.Volume, th Threshold) (*cubical.Grid, error) {
	if th.Lower > th.Upper {
		return nil, fmt.Errorf("threshold [%d, %d]: %w", th.Lower, th.Upper, ErrLabelRange)
	}
	if len(v.Labels) != v.Len() {
		return nil, &cubical.InvalidInputError{
			Op:     "roi.Binarize",
			Reason: fmt.Sprintf("volume shape %v needs %d labels, got %d", v.Shape, v.Len(), len(v.Labels)),
		}
	}
	data := make([]uint8, len(v.Labels))
	for i, l := range v.Labels {
		if l >= th.Lower && l <= th.Upper {
			data[i] = 1
		}
	}
	return cubical.NewGrid(v.Shape, data)
}

// Box is a half-open voxel region [Min, Max).
type Box struct {
	Min, Max [3]int
}

// Shape returns the extents of the box.
func (b Box) Shape() [3]int {
	return [3]int{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// BoundingBox returns the smallest box holding every foreground voxel.
func BoundingBox(g *cubical.Grid) (Box, error) {
	n := g.Shape()
	b := Box{Min: n}
	found := false
	for i := 0; i < n[0]; i++ {
		for j := 0; j < n[1]; j++ {
			row := g.Index(i, j, 0)
			for k := 0; k < n[2]; k++ {
				if g.Data()[row+k] == 0 {
					continue
				}
				found = true
				p := [3]int{i, j, k}
				for axis := range p {
					b.Min[axis] = min(b.Min[axis], p[axis])
					b.Max[axis] = max(b.Max[axis], p[axis]+1)
				}
			}
		}
	}
	if !found {
		return Box{}, ErrEmptyForeground
	}
	return b, nil
}

// Padding is the number of voxels added before and after a box on every axis.
type Padding struct {
	Before, After int
}

// Pad grows b by p and clamps the result to a grid of the given shape.
func Pad(b Box, p Padding, shape [3]int) Box {
	for axis := range shape {
		b.Min[axis] = max(0, b.Min[axis]-p.Before)
		b.Max[axis] = min(shape[axis], b.Max[axis]+p.After)
	}
	return b
}

// Extract copies the region b of g into a new grid.
func Extract(g *cubical.Grid, b Box) (*cubical.Grid, error) {
	n := g.Shape()
	size := b.Shape()
	for axis := range n {
		if b.Min[axis] < 0 || b.Max[axis] > n[axis] {
			return nil, fmt.Errorf("box %v in grid %v: %w", b, n, ErrRegion)
		}
		if size[axis] <= 0 {
			return nil, &cubical.InvalidInputError{Op: "roi.Extract", Reason: fmt.Sprintf("box %v is empty", b)}
		}
	}

	data := make([]uint8, size[0]*size[1]*size[2])
	src := g.Data()
	for i := 0; i < size[0]; i++ {
		for j := 0; j < size[1]; j++ {
			from := g.Index(b.Min[0]+i, b.Min[1]+j, b.Min[2])
			to := (i*size[1] + j) * size[2]
			copy(data[to:to+size[2]], src[from:from+size[2]])
		}
	}
	return cubical.NewGrid(size, data)
}

// Crop extracts the padded bounding box of the foreground and verifies that
// every foreground voxel survived.
func Crop(g *cubical.Grid, p Padding) (*cubical.Grid, Box, error) {
	if p.Before < 0 || p.After < 0 {
		return nil, Box{}, &cubical.InvalidInputError{Op: "roi.Crop", Reason: fmt.Sprintf("negative padding %+v", p)}
	}
	b, err := BoundingBox(g)
	if err != nil {
		return nil, Box{}, err
	}
	b = Pad(b, p, g.Shape())
	cropped, err := Extract(g, b)
	if err != nil {
		return nil, Box{}, err
	}
	if want, got := g.ForegroundCount(), cropped.ForegroundCount(); want != got {
		return nil, Box{}, fmt.Errorf("kept %d of %d voxels: %w", got, want, ErrCropClipsForeground)
	}
	return cropped, b, nil
}
