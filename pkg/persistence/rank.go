package persistence

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"segtopo/pkg/cubical"
)

// MaxRankEntries bounds the size of a single dense boundary matrix built by
// RankBetti.
const MaxRankEntries = 1 << 22

// ErrTooLargeForRank is returned by RankBetti when a boundary matrix would
// exceed MaxRankEntries.
var ErrTooLargeForRank = errors.New("persistence: complex too large for a rank computation")

// OrientedFiltration is a Filtration that also reports the incidence signs of
// each boundary. *cubical.Complex satisfies it.
type OrientedFiltration interface {
	Filtration
	OrientedBoundary(id int, dst []cubical.Facet) ([]cubical.Facet, error)
}

// RankBetti computes the Betti numbers of the whole complex f, ignoring
// levels, as b_k = C_k - rank d_k - rank d_{k+1} with d_k the signed integral
// boundary matrices taken over the reals.
//
// Cubical subcomplexes of R^3 have torsion-free integral homology, so these
// Betti numbers equal the Z/2 ones Reduce works with. The matrices are dense;
// it is meant for cross-checking small complexes.
func RankBetti(f OrientedFiltration) ([3]int, error) {
	var b [3]int

	local := make([]int, f.Len())
	var byDim [cubical.MaxDim + 1][]int
	for id := 0; id < f.Len(); id++ {
		dim := f.Dim(id)
		if dim < 0 || dim > cubical.MaxDim {
			return b, &ReductionInvariantViolation{Dim: dim, Detail: "cell dimension out of range"}
		}
		local[id] = len(byDim[dim])
		byDim[dim] = append(byDim[dim], id)
	}

	var ranks [cubical.MaxDim + 2]int
	var faces []cubical.Facet
	for dim := 1; dim <= cubical.MaxDim; dim++ {
		rows, cols := len(byDim[dim-1]), len(byDim[dim])
		if rows == 0 || cols == 0 {
			continue
		}
		if rows*cols > MaxRankEntries {
			return b, fmt.Errorf("%d x %d boundary matrix in dimension %d: %w", rows, cols, dim, ErrTooLargeForRank)
		}
		m := mat.NewDense(rows, cols, nil)
		for j, id := range byDim[dim] {
			var err error
			if faces, err = f.OrientedBoundary(id, faces); err != nil {
				return b, err
			}
			for _, face := range faces {
				m.Set(local[face.ID], j, float64(face.Sign))
			}
		}
		r, err := rankOf(m)
		if err != nil {
			return b, err
		}
		ranks[dim] = r
	}

	for k := range b {
		b[k] = len(byDim[k]) - ranks[k] - ranks[k+1]
	}
	return b, nil
}

func rankOf(m *mat.Dense) (int, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return 0, errors.New("persistence: SVD failed to converge")
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0, nil
	}
	rows, cols := m.Dims()
	tol := 1e-9 * values[0] * float64(max(rows, cols))
	r := 0
	for _, v := range values {
		if v > tol {
			r++
		}
	}
	return r, nil
}
