// Package persistence computes persistence pairs of a filtered cell complex
// by boundary-matrix reduction over Z/2.
package persistence

import (
	"cmp"
	"slices"

	"segtopo/pkg/cubical"
	"segtopo/pkg/logging"
)

// Filtration is a cell complex whose cell ids are already in filtration
// order: every face has a smaller id than its cofaces. *cubical.Complex
// satisfies it.
type Filtration interface {
	Mode() cubical.Mode
	Len() int
	Dim(id int) int
	Level(id int) uint8
	Count(dim int) int
	// Boundary appends the ascending face ids of cell id to dst[:0].
	Boundary(id int, dst []int32) ([]int32, error)
}

// CoefficientField is the only supported coefficient field.
const CoefficientField = 2

// Reduce runs the standard column reduction on the boundary matrix of f.
//
// Within a dimension columns are processed in id order. A column's pivot is
// its largest row id. While the pivot is owned by an earlier column, that
// column is added to it (symmetric difference over Z/2). Each pivot has
// exactly one owner, the first column that kept it, so the outcome depends
// only on the id order. A column that vanishes is a creator; a column that
// keeps pivot r pairs the creator r with it. Creators never paired are
// essential.
//
// Dimensions are reduced from the top down. Once row r is a pivot, column r
// is known to reduce to zero and is skipped (clearing), which leaves the
// pairs unchanged. Finite pairs are reported in death order.
func Reduce(f Filtration, field int) (*Diagram, error) {
	if field != CoefficientField {
		return nil, &cubical.InvalidInputError{
			Op:     "persistence.Reduce",
			Reason: "only coefficient field 2 is supported",
		}
	}

	n := f.Len()
	d := &Diagram{Mode: f.Mode()}

	var byDim [cubical.MaxDim + 1][]int
	for j := 0; j < n; j++ {
		dim := f.Dim(j)
		if dim < 0 || dim > cubical.MaxDim {
			return nil, &ReductionInvariantViolation{Dim: dim, Detail: "cell dimension out of range"}
		}
		byDim[dim] = append(byDim[dim], j)
		d.Columns[dim]++
	}
	for dim := 0; dim <= cubical.MaxDim; dim++ {
		if want := f.Count(dim); d.Columns[dim] != want {
			return nil, &ReductionInvariantViolation{
				Dim:    dim,
				Want:   want,
				Got:    d.Columns[dim],
				Detail: "column count does not match the complex's cell count",
			}
		}
	}

	pivotOwner := make([]int32, n)
	for i := range pivotOwner {
		pivotOwner[i] = -1
	}
	reduced := make([][]int32, n)
	creator := make([]bool, n)
	paired := make([]bool, n)

	var col, spare []int32
	var err error
	skipped := 0
	for dim := cubical.MaxDim; dim >= 0; dim-- {
		for _, j := range byDim[dim] {
			col, err = f.Boundary(j, col)
			if err != nil {
				return nil, &ReductionInvariantViolation{Dim: dim, Detail: err.Error()}
			}
			for _, face := range col {
				if int(face) >= j {
					return nil, &ReductionInvariantViolation{Dim: dim, Detail: "face does not precede its coface in the filtration"}
				}
				if f.Dim(int(face)) != dim-1 {
					return nil, &ReductionInvariantViolation{Dim: dim, Detail: "boundary contains a cell of the wrong dimension"}
				}
			}

			if paired[j] {
				creator[j] = true
				skipped++
				continue
			}

			for len(col) > 0 {
				owner := pivotOwner[col[len(col)-1]]
				if owner < 0 {
					break
				}
				next := addColumns(col, reduced[owner], spare)
				spare, col = col, next
			}

			if len(col) == 0 {
				if dim == cubical.MaxDim {
					return nil, &ReductionInvariantViolation{Dim: dim, Detail: "a 3-cell created a class"}
				}
				creator[j] = true
				continue
			}

			low := int(col[len(col)-1])
			pivotOwner[low] = int32(j)
			reduced[j] = slices.Clone(col)
			paired[low] = true
			d.Pairs = append(d.Pairs, Pair{
				Dim:         dim - 1,
				Birth:       low,
				Death:       j,
				Persistence: float64(f.Level(j)) - float64(f.Level(low)),
			})
		}
	}
	slices.SortFunc(d.Pairs, func(a, b Pair) int { return cmp.Compare(a.Death, b.Death) })

	for id := 0; id < n; id++ {
		if creator[id] && !paired[id] {
			d.Pairs = append(d.Pairs, Pair{
				Dim:         f.Dim(id),
				Birth:       id,
				Death:       Essential,
				Persistence: essentialPersistence(),
			})
		}
	}

	logging.Logger().Debug("boundary matrix reduced",
		"columns", n,
		"cleared", skipped,
		"pairs", len(d.Pairs),
		"essential0", d.EssentialCount(0),
		"essential1", d.EssentialCount(1),
		"essential2", d.EssentialCount(2))
	return d, nil
}

// addColumns writes the symmetric difference of the ascending slices a and b
// into dst[:0].
func addColumns(a, b, dst []int32) []int32 {
	dst = dst[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			dst = append(dst, a[i])
			i++
		case a[i] > b[j]:
			dst = append(dst, b[j])
			j++
		default:
			i++
			j++
		}
	}
	dst = append(dst, a[i:]...)
	return append(dst, b[j:]...)
}
