package persistence

import "fmt"

// ReductionInvariantViolation reports an internal inconsistency found while
// reducing a boundary matrix. It always indicates a bug in complex
// construction or reduction, never a data problem, and the computation must
// be abandoned rather than partially reported.
type ReductionInvariantViolation struct {
	// Dim is the homological dimension the check failed in, or -1 for checks
	// spanning all dimensions.
	Dim int
	// Want and Got are set for count checks; both are zero otherwise.
	Want, Got int
	Detail    string
}

func (e *ReductionInvariantViolation) Error() string {
	if e.Dim < 0 {
		return fmt.Sprintf("persistence: reduction invariant violated: %s (want %d, got %d)", e.Detail, e.Want, e.Got)
	}
	if e.Want != e.Got {
		return fmt.Sprintf("persistence: reduction invariant violated in dimension %d: %s (want %d, got %d)",
			e.Dim, e.Detail, e.Want, e.Got)
	}
	return fmt.Sprintf("persistence: reduction invariant violated in dimension %d: %s", e.Dim, e.Detail)
}
