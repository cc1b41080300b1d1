// Package topology extracts Betti numbers and the Euler characteristic of a
// binary voxel grid from its persistence diagram.
package topology

import (
	"math"

	"segtopo/pkg/cubical"
	"segtopo/pkg/persistence"
)

// DefaultMinPersistence keeps every full-step feature of a binary filtration
// and drops the zero-persistence pairs of cells that appear together.
const DefaultMinPersistence = 0.99

// Features are the topological invariants of a foreground.
type Features struct {
	// Betti holds b0 (components), b1 (tunnels) and b2 (cavities).
	Betti [3]int
	// Euler is b0 - b1 + b2.
	Euler int
}

// NewFeatures derives the Euler characteristic from Betti numbers.
func NewFeatures(betti [3]int) Features {
	return Features{Betti: betti, Euler: betti[0] - betti[1] + betti[2]}
}

// Extract counts the surviving classes of d per dimension.
//
// In foreground mode a pair of dimension k counts toward b_k when it is
// essential or its persistence is at least minPersistence. In dual mode the
// diagram describes the background; its finite pairs of dimension 2-k that
// reach the threshold are the foreground's b_k, and the single essential class
// of the bounding box is not a foreground feature.
func Extract(d *persistence.Diagram, minPersistence float64) (Features, error) {
	const op = "topology.Extract"
	if d == nil {
		return Features{}, &cubical.InvalidInputError{Op: op, Reason: "diagram is nil"}
	}
	if err := checkThreshold(op, minPersistence); err != nil {
		return Features{}, err
	}

	var betti [3]int
	for _, p := range d.Pairs {
		if p.Dim < 0 || p.Dim > 2 {
			continue
		}
		switch d.Mode {
		case cubical.ModeForeground:
			if p.IsEssential() || p.Persistence >= minPersistence {
				betti[p.Dim]++
			}
		case cubical.ModeDual:
			if !p.IsEssential() && p.Persistence >= minPersistence {
				betti[2-p.Dim]++
			}
		}
	}
	return NewFeatures(betti), nil
}

func checkThreshold(op string, minPersistence float64) error {
	if math.IsNaN(minPersistence) || math.IsInf(minPersistence, 0) || minPersistence < 0 {
		return &cubical.InvalidInputError{Op: op, Reason: "min persistence must be a finite non-negative number"}
	}
	return nil
}
