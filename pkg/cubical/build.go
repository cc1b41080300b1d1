package cubical

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"segtopo/pkg/logging"
)

// levelAbsent marks a doubled-grid position that holds no cell.
const levelAbsent uint8 = 0xFF

// Options controls complex construction.
type Options struct {
	Mode Mode
	// Workers bounds the goroutines used to level the doubled grid.
	// Zero or negative means runtime.NumCPU(). The result does not depend on it.
	Workers int
}

// Build constructs the filtered cubical complex of g.
//
// In dual mode the complex covers g surrounded by one layer of background
// voxels, so foreground touching the array edge is still enclosed by
// background; Shape and cell coordinates then refer to the enlarged grid.
//
// Leveling runs one task per doubled-grid plane along axis 0; each task writes
// a disjoint range of the level table. Enumeration is sequential and produces
// the cells in (level, dimension, key) order.
func Build(g *Grid, opts Options) (*Complex, error) {
	const op = "cubical.Build"
	if g == nil {
		return nil, invalidInput(op, "grid is nil")
	}
	if opts.Mode != ModeForeground && opts.Mode != ModeDual {
		return nil, invalidInput(op, "unknown mode %d", int(opts.Mode))
	}

	if opts.Mode == ModeDual {
		g = g.withMargin()
	}

	n := g.shape
	cs := [3]int{2*n[0] + 1, 2*n[1] + 1, 2*n[2] + 1}
	total := cs[0] * cs[1] * cs[2]
	if total > math.MaxInt32 {
		return nil, invalidInput(op, "grid %v is too large (%d doubled-grid positions)", n, total)
	}

	c := &Complex{
		mode:     opts.Mode,
		shape:    n,
		cshape:   cs,
		cstrides: [3]int{cs[1] * cs[2], cs[2], 1},
	}

	levels := make([]uint8, total)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	spans := [3][]voxelSpan{incidentSpans(n[0]), incidentSpans(n[1]), incidentSpans(n[2])}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for a := 0; a < cs[0]; a++ {
		eg.Go(func() error {
			return c.levelPlane(g, spans, a, levels)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	c.enumerate(levels)

	logging.Logger().Debug("cubical complex built",
		"mode", c.mode.String(),
		"shape", n,
		"vertices", c.counts[0],
		"edges", c.counts[1],
		"squares", c.counts[2],
		"cubes", c.counts[3])
	return c, nil
}

// voxelSpan is the inclusive range of voxel indices along one axis whose
// closed unit intervals contain a doubled-grid coordinate.
type voxelSpan struct{ lo, hi int }

func incidentSpans(n int) []voxelSpan {
	spans := make([]voxelSpan, 2*n+1)
	for x := range spans {
		if x&1 == 1 {
			spans[x] = voxelSpan{x / 2, x / 2}
			continue
		}
		lo, hi := x/2-1, x/2
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		spans[x] = voxelSpan{lo, hi}
	}
	return spans
}

// withMargin returns a copy of g surrounded by one layer of background voxels.
func (g *Grid) withMargin() *Grid {
	n := g.shape
	shape := [3]int{n[0] + 2, n[1] + 2, n[2] + 2}
	out := &Grid{
		shape:   shape,
		strides: [3]int{shape[1] * shape[2], shape[2], 1},
		data:    make([]uint8, shape[0]*shape[1]*shape[2]),
	}
	for i := 0; i < n[0]; i++ {
		for j := 0; j < n[1]; j++ {
			from := g.Index(i, j, 0)
			to := out.Index(i+1, j+1, 1)
			copy(out.data[to:to+n[2]], g.data[from:from+n[2]])
		}
	}
	return out
}

// levelPlane fills levels for every position with first coordinate a.
func (c *Complex) levelPlane(g *Grid, spans [3][]voxelSpan, a int, levels []uint8) error {
	if a < 0 || a >= c.cshape[0] {
		return fmt.Errorf("cubical: plane %d outside doubled grid of extent %d", a, c.cshape[0])
	}
	sa := spans[0][a]
	base := a * c.cstrides[0]
	for b := 0; b < c.cshape[1]; b++ {
		sb := spans[1][b]
		row := base + b*c.cstrides[1]
		for k := 0; k < c.cshape[2]; k++ {
			sc := spans[2][k]
			lo, hi := uint8(1), uint8(0)
			for i := sa.lo; i <= sa.hi; i++ {
				for j := sb.lo; j <= sb.hi; j++ {
					off := i*g.strides[0] + j*g.strides[1]
					for l := sc.lo; l <= sc.hi; l++ {
						v := g.data[off+l]
						lo = min(lo, v)
						hi = max(hi, v)
					}
				}
			}
			switch c.mode {
			case ModeForeground:
				if hi == 1 {
					levels[row+k] = 0
				} else {
					levels[row+k] = levelAbsent
				}
			case ModeDual:
				levels[row+k] = lo
			}
		}
	}
	return nil
}

// enumerate assigns ids in (level, dimension, key) order and fills the index.
func (c *Complex) enumerate(levels []uint8) {
	var buckets [2][MaxDim + 1][]int
	for a := 0; a < c.cshape[0]; a++ {
		for b := 0; b < c.cshape[1]; b++ {
			row := a*c.cstrides[0] + b*c.cstrides[1]
			for k := 0; k < c.cshape[2]; k++ {
				lvl := levels[row+k]
				if lvl == levelAbsent {
					continue
				}
				dim := a&1 + b&1 + k&1
				buckets[lvl][dim] = append(buckets[lvl][dim], row+k)
			}
		}
	}

	size := 0
	for lvl := range buckets {
		for dim := range buckets[lvl] {
			size += len(buckets[lvl][dim])
			c.counts[dim] += len(buckets[lvl][dim])
		}
	}

	c.index = make([]int32, len(levels))
	for i := range c.index {
		c.index[i] = -1
	}
	c.cells = make([]Cell, 0, size)
	for lvl := range buckets {
		for dim := range buckets[lvl] {
			for _, key := range buckets[lvl][dim] {
				c.index[key] = int32(len(c.cells))
				c.cells = append(c.cells, Cell{Key: key, Dim: uint8(dim), Level: uint8(lvl)})
			}
		}
	}
}
