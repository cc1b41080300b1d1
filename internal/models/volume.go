package models

// Volume is a labeled 3D segmentation held in memory.
type Volume struct {
	// Labels holds one integer label per voxel in row-major order, axis 0
	// slowest. For NIfTI input the axes are (z, y, x).
	Labels []int32

	// Shape is the number of voxels along each axis.
	Shape [3]int

	// Spacing is the physical size of a voxel along each axis in mm.
	// Zero when the source carries no geometry.
	Spacing [3]float64
}

// Len returns the number of voxels the shape describes.
func (v *Volume) Len() int {
	return v.Shape[0] * v.Shape[1] * v.Shape[2]
}

// Slice is one decoded 2D label image of a slice stack.
type Slice struct {
	// Index is the position of this slice in the stack.
	Index int

	// Filename is the file the slice was decoded from.
	Filename string

	// Width and Height are the image extents in pixels.
	Width, Height int

	// Labels holds one label per pixel, row-major.
	Labels []int32
}
