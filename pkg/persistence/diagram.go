package persistence

import (
	"math"

	"segtopo/pkg/cubical"
)

// Essential is the Death value of a pair whose class never dies.
const Essential = -1

// Pair is one persistence pair. Birth and Death are cell ids in filtration
// order; Dim is the dimension of the birth cell.
type Pair struct {
	Dim         int
	Birth       int
	Death       int
	Persistence float64
}

// IsEssential reports whether the class never dies.
func (p Pair) IsEssential() bool { return p.Death == Essential }

// Diagram is the full output of a reduction.
//
// Pairs holds the finite pairs ordered by death cell followed by the essential
// classes ordered by birth cell, so two reductions of the same complex yield
// identical diagrams.
type Diagram struct {
	Mode  cubical.Mode
	Pairs []Pair
	// Columns counts the reduced columns per cell dimension.
	Columns [cubical.MaxDim + 1]int
}

// InDim returns the pairs of dimension dim, essential classes included.
func (d *Diagram) InDim(dim int) []Pair {
	var out []Pair
	for _, p := range d.Pairs {
		if p.Dim == dim {
			out = append(out, p)
		}
	}
	return out
}

// EssentialCount returns the number of essential classes of dimension dim.
func (d *Diagram) EssentialCount(dim int) int {
	n := 0
	for _, p := range d.Pairs {
		if p.Dim == dim && p.IsEssential() {
			n++
		}
	}
	return n
}

// FiniteCount returns the number of finite pairs of dimension dim.
func (d *Diagram) FiniteCount(dim int) int {
	n := 0
	for _, p := range d.Pairs {
		if p.Dim == dim && !p.IsEssential() {
			n++
		}
	}
	return n
}

func essentialPersistence() float64 { return math.Inf(1) }
