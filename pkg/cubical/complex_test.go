package cubical

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridOf builds a grid of the given shape with the listed voxels set.
func gridOf(t *testing.T, shape [3]int, voxels ...[3]int) *Grid {
	t.Helper()
	data := make([]uint8, shape[0]*shape[1]*shape[2])
	for _, v := range voxels {
		data[v[0]*shape[1]*shape[2]+v[1]*shape[2]+v[2]] = 1
	}
	g, err := NewGrid(shape, data)
	require.NoError(t, err)
	return g
}

func TestNewGridRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		shape [3]int
		data  []uint8
	}{
		{"zero extent", [3]int{0, 2, 2}, nil},
		{"negative extent", [3]int{2, -1, 2}, []uint8{0, 0}},
		{"empty", [3]int{1, 1, 1}, nil},
		{"length mismatch", [3]int{2, 2, 2}, make([]uint8, 7)},
		{"non-binary value", [3]int{1, 1, 2}, []uint8{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.shape, tt.data)
			assert.Nil(t, g)
			var inv *InvalidInputError
			require.True(t, errors.As(err, &inv), "got %v", err)
			assert.Equal(t, "cubical.NewGrid", inv.Op)
		})
	}
}

func TestGridIndexingIsRowMajor(t *testing.T) {
	g := gridOf(t, [3]int{2, 3, 4}, [3]int{1, 2, 3})
	assert.Equal(t, [3]int{12, 4, 1}, g.Strides())
	assert.Equal(t, 23, g.Index(1, 2, 3))
	assert.Equal(t, uint8(1), g.At(1, 2, 3))
	assert.Equal(t, 1, g.ForegroundCount())
	assert.Equal(t, 24, g.Len())
}

func TestBuildSingleVoxel(t *testing.T) {
	c, err := Build(gridOf(t, [3]int{1, 1, 1}, [3]int{0, 0, 0}), Options{})
	require.NoError(t, err)

	assert.Equal(t, [4]int{8, 12, 6, 1}, c.Counts())
	assert.Equal(t, 27, c.Len())
	assert.Equal(t, 1, c.EulerCharacteristic())
}

func TestBuildSharesFacesBetweenAdjacentVoxels(t *testing.T) {
	c, err := Build(gridOf(t, [3]int{1, 1, 2}, [3]int{0, 0, 0}, [3]int{0, 0, 1}), Options{})
	require.NoError(t, err)

	assert.Equal(t, [4]int{12, 20, 11, 2}, c.Counts())
	assert.Equal(t, 1, c.EulerCharacteristic())
}

func TestBuildOmitsBackground(t *testing.T) {
	c, err := Build(gridOf(t, [3]int{3, 3, 3}), Options{})
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestBuildOrderIsLevelDimensionKey(t *testing.T) {
	g := gridOf(t, [3]int{3, 3, 3}, [3]int{1, 1, 1}, [3]int{0, 1, 1}, [3]int{2, 2, 2})
	for _, mode := range []Mode{ModeForeground, ModeDual} {
		c, err := Build(g, Options{Mode: mode})
		require.NoError(t, err)
		for id := 1; id < c.Len(); id++ {
			prev, cur := c.Cell(id-1), c.Cell(id)
			less := prev.Level < cur.Level ||
				(prev.Level == cur.Level && prev.Dim < cur.Dim) ||
				(prev.Level == cur.Level && prev.Dim == cur.Dim && prev.Key < cur.Key)
			require.True(t, less, "%s: cell %d %+v not after %+v", mode, id, cur, prev)
		}
	}
}

func TestBoundaryOfVoxelIsItsSixSquares(t *testing.T) {
	c, err := Build(gridOf(t, [3]int{1, 1, 1}, [3]int{0, 0, 0}), Options{})
	require.NoError(t, err)

	cube, ok := c.Lookup([3]int{1, 1, 1})
	require.True(t, ok)
	faces, err := c.Boundary(cube, nil)
	require.NoError(t, err)
	require.Len(t, faces, 6)
	for i, f := range faces {
		assert.Equal(t, 2, c.Dim(int(f)))
		if i > 0 {
			assert.Less(t, faces[i-1], f)
		}
		assert.Less(t, int(f), cube, "faces must precede the cube")
	}

	vertex, ok := c.Lookup([3]int{0, 0, 0})
	require.True(t, ok)
	faces, err = c.Boundary(vertex, faces)
	require.NoError(t, err)
	assert.Empty(t, faces)
}

func TestBuildDualCoversBoxWithMinLevels(t *testing.T) {
	c, err := Build(gridOf(t, [3]int{1, 1, 2}, [3]int{0, 0, 1}), Options{Mode: ModeDual})
	require.NoError(t, err)

	// One background voxel is added on every side: 3x3x4 voxels, 7x7x9 cells.
	assert.Equal(t, [3]int{3, 3, 4}, c.Shape())
	assert.Equal(t, 7*7*9, c.Len())

	// Only the foreground voxel itself avoids every background voxel.
	high := 0
	for id := 0; id < c.Len(); id++ {
		if c.Level(id) == 1 {
			high++
		}
	}
	assert.Equal(t, 1, high)

	cube, ok := c.Lookup([3]int{3, 3, 5})
	require.True(t, ok)
	assert.Equal(t, uint8(1), c.Level(cube))

	shared, ok := c.Lookup([3]int{3, 3, 4})
	require.True(t, ok)
	assert.Equal(t, uint8(0), c.Level(shared), "shared square takes the lower level")
}

func TestBuildDualEnclosesForegroundOnTheEdge(t *testing.T) {
	// Every voxel set: without the margin no cell would be background.
	g := gridOf(t, [3]int{2, 2, 2},
		[3]int{0, 0, 0}, [3]int{0, 0, 1}, [3]int{0, 1, 0}, [3]int{0, 1, 1},
		[3]int{1, 0, 0}, [3]int{1, 0, 1}, [3]int{1, 1, 0}, [3]int{1, 1, 1})
	c, err := Build(g, Options{Mode: ModeDual})
	require.NoError(t, err)

	corner, ok := c.Lookup([3]int{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, uint8(0), c.Level(corner))

	inner, ok := c.Lookup([3]int{4, 4, 4})
	require.True(t, ok)
	assert.Equal(t, uint8(1), c.Level(inner))

	// The caller's grid is left untouched.
	assert.Equal(t, [3]int{2, 2, 2}, g.Shape())
}

func TestOrientedBoundaryOfBoundaryVanishes(t *testing.T) {
	g := gridOf(t, [3]int{2, 2, 3}, [3]int{0, 0, 0}, [3]int{1, 1, 1}, [3]int{0, 1, 2}, [3]int{1, 1, 2})
	for _, mode := range []Mode{ModeForeground, ModeDual} {
		c, err := Build(g, Options{Mode: mode})
		require.NoError(t, err)

		for id := 0; id < c.Len(); id++ {
			facets, err := c.OrientedBoundary(id, nil)
			require.NoError(t, err)
			require.Len(t, facets, 2*c.Dim(id))

			plain, err := c.Boundary(id, nil)
			require.NoError(t, err)
			sum := make(map[int32]int)
			for i, f := range facets {
				assert.Equal(t, plain[i], f.ID)
				sub, err := c.OrientedBoundary(int(f.ID), nil)
				require.NoError(t, err)
				for _, s := range sub {
					sum[s.ID] += int(f.Sign) * int(s.Sign)
				}
			}
			for face, v := range sum {
				assert.Zero(t, v, "%s: cell %d, coefficient of %d in dd", mode, id, face)
			}
		}
	}
}

func TestBuildIsIndependentOfWorkerCount(t *testing.T) {
	g := gridOf(t, [3]int{4, 3, 5},
		[3]int{0, 0, 0}, [3]int{1, 1, 1}, [3]int{2, 1, 3}, [3]int{3, 2, 4}, [3]int{3, 2, 3})
	for _, mode := range []Mode{ModeForeground, ModeDual} {
		one, err := Build(g, Options{Mode: mode, Workers: 1})
		require.NoError(t, err)
		many, err := Build(g, Options{Mode: mode, Workers: 8})
		require.NoError(t, err)
		assert.Equal(t, one.cells, many.cells)
		assert.Equal(t, one.index, many.index)
	}
}

func TestBuildRejectsNilGridAndUnknownMode(t *testing.T) {
	var inv *InvalidInputError

	_, err := Build(nil, Options{})
	assert.True(t, errors.As(err, &inv))

	_, err = Build(gridOf(t, [3]int{1, 1, 1}), Options{Mode: Mode(7)})
	assert.True(t, errors.As(err, &inv))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Dual")
	require.NoError(t, err)
	assert.Equal(t, ModeDual, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeForeground, m)

	_, err = ParseMode("alpha")
	assert.Error(t, err)
	assert.Equal(t, "foreground", ModeForeground.String())
}

func TestLevelPlaneRejectsPlaneOutsideGrid(t *testing.T) {
	g := gridOf(t, [3]int{1, 1, 1}, [3]int{0, 0, 0})
	c := &Complex{cshape: [3]int{3, 3, 3}, cstrides: [3]int{9, 3, 1}}
	spans := [3][]voxelSpan{incidentSpans(1), incidentSpans(1), incidentSpans(1)}

	assert.Error(t, c.levelPlane(g, spans, 3, make([]uint8, 27)))
	assert.NoError(t, c.levelPlane(g, spans, 2, make([]uint8, 27)))
}
