package topology

import (
	"errors"
	"fmt"

	"segtopo/pkg/cubical"
	"segtopo/pkg/logging"
	"segtopo/pkg/persistence"
)

// Options configures a single computation. The zero value is not valid; start
// from DefaultOptions.
type Options struct {
	MinPersistence   float64
	CoefficientField int
	Mode             cubical.Mode
	// Workers bounds the goroutines used while building the complex.
	Workers int
	// CrossCheck recomputes the Betti numbers from boundary ranks in
	// foreground mode. Complexes too large for dense matrices are skipped.
	CrossCheck bool
}

// DefaultOptions returns min persistence 0.99 over Z/2 in foreground mode.
func DefaultOptions() Options {
	return Options{
		MinPersistence:   DefaultMinPersistence,
		CoefficientField: persistence.CoefficientField,
		Mode:             cubical.ModeForeground,
	}
}

// Validate reports unusable options as *cubical.InvalidInputError.
func (o Options) Validate() error {
	const op = "topology.Options"
	if err := checkThreshold(op, o.MinPersistence); err != nil {
		return err
	}
	if o.CoefficientField != persistence.CoefficientField {
		return &cubical.InvalidInputError{Op: op, Reason: fmt.Sprintf("coefficient field %d is not supported, only 2", o.CoefficientField)}
	}
	if o.Mode != cubical.ModeForeground && o.Mode != cubical.ModeDual {
		return &cubical.InvalidInputError{Op: op, Reason: fmt.Sprintf("unknown mode %s", o.Mode)}
	}
	return nil
}

// Result is the outcome of Compute.
type Result struct {
	Features
	Mode cubical.Mode
	// Cells counts the cells of the complex per dimension.
	Cells [cubical.MaxDim + 1]int
	// CellEuler is V - E + F - C of the complex.
	CellEuler int
	// Pairs is the number of persistence pairs, essential classes included.
	Pairs int
	// Filtered is the number of pairs below the persistence threshold.
	Filtered int
	// CrossChecked reports whether the rank cross-check ran and agreed.
	CrossChecked bool
}

// Compute runs build, reduce and extract on g.
//
// In foreground mode with a positive threshold the Betti numbers are the
// homology of the complex, so their Euler characteristic must equal the
// cell-count one; a mismatch is reported as a ReductionInvariantViolation.
func Compute(g *cubical.Grid, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c, err := cubical.Build(g, cubical.Options{Mode: opts.Mode, Workers: opts.Workers})
	if err != nil {
		return nil, err
	}
	d, err := persistence.Reduce(c, opts.CoefficientField)
	if err != nil {
		return nil, err
	}
	f, err := Extract(d, opts.MinPersistence)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Features:  f,
		Mode:      opts.Mode,
		Cells:     c.Counts(),
		CellEuler: c.EulerCharacteristic(),
		Pairs:     len(d.Pairs),
	}
	for _, p := range d.Pairs {
		if !p.IsEssential() && p.Persistence < opts.MinPersistence {
			res.Filtered++
		}
	}

	if opts.Mode == cubical.ModeForeground && opts.MinPersistence > 0 && f.Euler != res.CellEuler {
		return nil, &persistence.ReductionInvariantViolation{
			Dim:    -1,
			Want:   res.CellEuler,
			Got:    f.Euler,
			Detail: "Euler characteristic of the Betti numbers disagrees with the cell counts",
		}
	}

	if opts.CrossCheck && opts.Mode == cubical.ModeForeground && opts.MinPersistence > 0 {
		if err := crossCheck(c, f); err != nil {
			if !errors.Is(err, persistence.ErrTooLargeForRank) {
				return nil, err
			}
			logging.Logger().Warn("skipping rank cross-check", "error", err)
		} else {
			res.CrossChecked = true
		}
	}

	logging.Logger().Debug("topological features extracted",
		"mode", opts.Mode.String(),
		"b0", f.Betti[0],
		"b1", f.Betti[1],
		"b2", f.Betti[2],
		"euler", f.Euler,
		"filtered", res.Filtered)
	return res, nil
}

func crossCheck(c *cubical.Complex, f Features) error {
	want, err := persistence.RankBetti(c)
	if err != nil {
		return err
	}
	for k := range want {
		if want[k] != f.Betti[k] {
			return &persistence.ReductionInvariantViolation{
				Dim:    k,
				Want:   want[k],
				Got:    f.Betti[k],
				Detail: "Betti number disagrees with the boundary ranks",
			}
		}
	}
	return nil
}
