// Package cubical turns a binary voxel grid into a filtered cubical complex.
//
// Cells are addressed on the doubled grid: a grid of voxel shape (n0, n1, n2)
// has cells at integer coordinates in [0, 2n0] x [0, 2n1] x [0, 2n2]. An odd
// coordinate spans a unit interval along that axis, an even one is a point, so
// the dimension of a cell is the number of its odd coordinates. Voxel (i, j, k)
// is the 3-cell at (2i+1, 2j+1, 2k+1).
package cubical

// Grid is an immutable 3D binary voxel grid stored in row-major order:
//
//	index(i, j, k) = i*stride[0] + j*stride[1] + k*stride[2]
//
// with stride = (n1*n2, n2, 1). The backing slice is owned by the caller and
// is only ever read.
type Grid struct {
	shape   [3]int
	strides [3]int
	data    []uint8
}

// NewGrid validates data against shape and wraps it without copying.
// Every extent must be positive, len(data) must equal n0*n1*n2 and every
// value must be 0 or 1.
func NewGrid(shape [3]int, data []uint8) (*Grid, error) {
	const op = "cubical.NewGrid"
	for axis, n := range shape {
		if n <= 0 {
			return nil, invalidInput(op, "axis %d has extent %d", axis, n)
		}
	}
	size := shape[0] * shape[1] * shape[2]
	if len(data) == 0 {
		return nil, invalidInput(op, "grid is empty")
	}
	if len(data) != size {
		return nil, invalidInput(op, "shape %v needs %d voxels, got %d", shape, size, len(data))
	}
	for i, v := range data {
		if v > 1 {
			return nil, invalidInput(op, "voxel %d has value %d, want 0 or 1", i, v)
		}
	}
	return &Grid{
		shape:   shape,
		strides: [3]int{shape[1] * shape[2], shape[2], 1},
		data:    data,
	}, nil
}

// Shape returns the voxel extents (n0, n1, n2).
func (g *Grid) Shape() [3]int { return g.shape }

// Strides returns the row-major stride table.
func (g *Grid) Strides() [3]int { return g.strides }

// Len returns the number of voxels.
func (g *Grid) Len() int { return len(g.data) }

// Index returns the linear index of voxel (i, j, k).
func (g *Grid) Index(i, j, k int) int {
	return i*g.strides[0] + j*g.strides[1] + k*g.strides[2]
}

// At returns the value of voxel (i, j, k).
func (g *Grid) At(i, j, k int) uint8 {
	return g.data[g.Index(i, j, k)]
}

// Data exposes the backing slice. Callers must not modify it.
func (g *Grid) Data() []uint8 { return g.data }

// ForegroundCount returns the number of voxels with value 1.
func (g *Grid) ForegroundCount() int {
	n := 0
	for _, v := range g.data {
		n += int(v)
	}
	return n
}
