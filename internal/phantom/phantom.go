// Package phantom generates synthetic binary segmentations with known
// topology, used as fixtures by the engine and pipeline tests.
package phantom

import "math"

// Volume is a row-major binary volume, axis 0 slowest.
type Volume struct {
	Shape [3]int
	Data  []uint8
}

// New returns an all-background volume.
func New(shape [3]int) *Volume {
	return &Volume{Shape: shape, Data: make([]uint8, shape[0]*shape[1]*shape[2])}
}

// Set writes one voxel.
func (v *Volume) Set(i, j, k int, val uint8) {
	v.Data[(i*v.Shape[1]+j)*v.Shape[2]+k] = val
}

// At reads one voxel.
func (v *Volume) At(i, j, k int) uint8 {
	return v.Data[(i*v.Shape[1]+j)*v.Shape[2]+k]
}

// Fill sets every voxel in the half-open box [lo, hi) to val.
func (v *Volume) Fill(lo, hi [3]int, val uint8) *Volume {
	for i := lo[0]; i < hi[0]; i++ {
		for j := lo[1]; j < hi[1]; j++ {
			for k := lo[2]; k < hi[2]; k++ {
				v.Set(i, j, k, val)
			}
		}
	}
	return v
}

// Box is a solid cuboid of the given size with pad background voxels on
// every side. b = (1, 0, 0).
func Box(size [3]int, pad int) *Volume {
	shape := [3]int{size[0] + 2*pad, size[1] + 2*pad, size[2] + 2*pad}
	return New(shape).Fill([3]int{pad, pad, pad}, [3]int{pad + size[0], pad + size[1], pad + size[2]}, 1)
}

// Shell is a hollow cube of edge outer whose walls are wall voxels thick.
// b = (1, 0, 1).
func Shell(outer, wall, pad int) *Volume {
	v := Box([3]int{outer, outer, outer}, pad)
	lo, hi := pad+wall, pad+outer-wall
	return v.Fill([3]int{lo, lo, lo}, [3]int{hi, hi, hi}, 0)
}

// Ring is a square annulus of edge outer with a square hole of edge hole,
// extruded height voxels along axis 0. b = (1, 1, 0).
func Ring(outer, hole, height, pad int) *Volume {
	v := Box([3]int{height, outer, outer}, pad)
	lo := pad + (outer-hole)/2
	return v.Fill([3]int{pad, lo, lo}, [3]int{pad + height, lo + hole, lo + hole}, 0)
}

// Blobs places count solid cubes of edge size along axis 2, separated by
// gap background voxels. b = (count, 0, 0) for gap >= 1.
func Blobs(count, size, gap, pad int) *Volume {
	length := count*size + (count-1)*gap
	v := New([3]int{size + 2*pad, size + 2*pad, length + 2*pad})
	for b := 0; b < count; b++ {
		k := pad + b*(size+gap)
		v.Fill([3]int{pad, pad, k}, [3]int{pad + size, pad + size, k + size}, 1)
	}
	return v
}

// SphereShell voxelizes the spherical shell inner < r <= outer centred in an
// n^3 grid. b = (1, 0, 1) when outer-inner is at least 2.
func SphereShell(n int, inner, outer float64) *Volume {
	v := New([3]int{n, n, n})
	c := float64(n-1) / 2
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				r := math.Sqrt((float64(i)-c)*(float64(i)-c) + (float64(j)-c)*(float64(j)-c) + (float64(k)-c)*(float64(k)-c))
				if r > inner && r <= outer {
					v.Set(i, j, k, 1)
				}
			}
		}
	}
	return v
}

// Paste copies src into v with its origin at off, OR-ing foreground.
func (v *Volume) Paste(src *Volume, off [3]int) *Volume {
	for i := 0; i < src.Shape[0]; i++ {
		for j := 0; j < src.Shape[1]; j++ {
			for k := 0; k < src.Shape[2]; k++ {
				if src.At(i, j, k) == 1 {
					v.Set(off[0]+i, off[1]+j, off[2]+k, 1)
				}
			}
		}
	}
	return v
}
