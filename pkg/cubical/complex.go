package cubical

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Mode selects which cells a Complex contains and how they are leveled.
type Mode int

const (
	// ModeForeground builds the closure of the foreground voxels. Every cell
	// sits at level 0, so the homology of the complex is the homology of the
	// foreground with 26-connectivity.
	ModeForeground Mode = iota

	// ModeDual builds every cell of the grid's bounding box. A voxel's level is
	// its value and a lower-dimensional cell takes the minimum level of the
	// voxels it bounds, so background appears at 0 and foreground at 1.
	// Foreground features are read off the background by duality and use
	// 6-connectivity. The box is grown by one background voxel on every side
	// before leveling.
	ModeDual
)

func (m Mode) String() string {
	switch m {
	case ModeForeground:
		return "foreground"
	case ModeDual:
		return "dual"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "foreground":
		return ModeForeground, nil
	case "dual":
		return ModeDual, nil
	}
	return 0, invalidInput("cubical.ParseMode", "unknown mode %q (want foreground or dual)", s)
}

// MaxDim is the dimension of a voxel.
const MaxDim = 3

// ErrMissingFace is returned by Boundary when a face of a cell is not part of
// the complex. It means the complex is not closed, which is a builder bug.
var ErrMissingFace = errors.New("cubical: boundary face missing from complex")

// Cell is one elementary cube of the complex.
type Cell struct {
	// Key is the row-major index of the cell on the doubled grid.
	Key int
	// Dim is the number of non-degenerate axes (0..3).
	Dim uint8
	// Level is the filtration value at which the cell appears.
	Level uint8
}

// Complex is a filtered cubical complex. Cell ids are positions in the
// filtration order (level, dimension, key) ascending, so every face precedes
// its cofaces.
type Complex struct {
	mode     Mode
	shape    [3]int
	cshape   [3]int
	cstrides [3]int

	cells  []Cell
	index  []int32 // doubled-grid key -> cell id, -1 when absent
	counts [MaxDim + 1]int
}

// Mode reports how the complex was built.
func (c *Complex) Mode() Mode { return c.mode }

// Shape returns the voxel extents the complex covers. In dual mode this
// includes the background margin.
func (c *Complex) Shape() [3]int { return c.shape }

// Len returns the number of cells.
func (c *Complex) Len() int { return len(c.cells) }

// Cell returns the cell with the given id.
func (c *Complex) Cell(id int) Cell { return c.cells[id] }

// Dim returns the dimension of cell id.
func (c *Complex) Dim(id int) int { return int(c.cells[id].Dim) }

// Level returns the filtration level of cell id.
func (c *Complex) Level(id int) uint8 { return c.cells[id].Level }

// Count returns the number of cells of dimension dim.
func (c *Complex) Count(dim int) int {
	if dim < 0 || dim > MaxDim {
		return 0
	}
	return c.counts[dim]
}

// Counts returns the number of cells per dimension.
func (c *Complex) Counts() [MaxDim + 1]int { return c.counts }

// Coords decodes a doubled-grid key.
func (c *Complex) Coords(key int) [3]int {
	a := key / c.cstrides[0]
	rem := key % c.cstrides[0]
	return [3]int{a, rem / c.cstrides[1], rem % c.cstrides[1]}
}

// Lookup returns the id of the cell at doubled-grid coordinates p.
func (c *Complex) Lookup(p [3]int) (int, bool) {
	for axis := range p {
		if p[axis] < 0 || p[axis] >= c.cshape[axis] {
			return 0, false
		}
	}
	id := c.index[p[0]*c.cstrides[0]+p[1]*c.cstrides[1]+p[2]]
	return int(id), id >= 0
}

// Boundary appends the ids of the faces of cell id to dst[:0] in ascending
// order. Over Z/2 orientation is irrelevant, so the boundary is just the set of
// the 2*dim facets.
func (c *Complex) Boundary(id int, dst []int32) ([]int32, error) {
	dst = dst[:0]
	key := c.cells[id].Key
	p := c.Coords(key)
	for axis := 0; axis < 3; axis++ {
		if p[axis]&1 == 0 {
			continue
		}
		for _, face := range [2]int{key - c.cstrides[axis], key + c.cstrides[axis]} {
			fid := c.index[face]
			if fid < 0 {
				return nil, fmt.Errorf("cell %d at %v, face key %d: %w", id, p, face, ErrMissingFace)
			}
			dst = append(dst, fid)
		}
	}
	slices.Sort(dst)
	return dst, nil
}

// Facet is a face of a cell together with its incidence number in the
// oriented boundary.
type Facet struct {
	ID   int32
	Sign int8
}

// OrientedBoundary appends the facets of cell id to dst[:0] with their signs
// in the integral cubical boundary. For the i-th non-degenerate axis of the
// cell (counting from 0) the upper face has sign (-1)^i and the lower face
// the opposite sign. Facets are ordered by id.
func (c *Complex) OrientedBoundary(id int, dst []Facet) ([]Facet, error) {
	dst = dst[:0]
	key := c.cells[id].Key
	p := c.Coords(key)
	sign := int8(1)
	for axis := 0; axis < 3; axis++ {
		if p[axis]&1 == 0 {
			continue
		}
		for _, face := range [2]Facet{
			{ID: c.index[key-c.cstrides[axis]], Sign: -sign},
			{ID: c.index[key+c.cstrides[axis]], Sign: sign},
		} {
			if face.ID < 0 {
				return nil, fmt.Errorf("cell %d at %v, axis %d: %w", id, p, axis, ErrMissingFace)
			}
			dst = append(dst, face)
		}
		sign = -sign
	}
	slices.SortFunc(dst, func(a, b Facet) int { return int(a.ID) - int(b.ID) })
	return dst, nil
}

// EulerCharacteristic returns the alternating sum of cell counts,
// V - E + F - C.
func (c *Complex) EulerCharacteristic() int {
	return c.counts[0] - c.counts[1] + c.counts[2] - c.counts[3]
}
