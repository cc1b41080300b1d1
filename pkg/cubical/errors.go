package cubical

import "fmt"

// InvalidInputError reports a malformed voxel grid or an unusable engine
// option. It is never retryable: the same input fails the same way.
type InvalidInputError struct {
	// Op names the operation that rejected the input, e.g. "cubical.NewGrid".
	Op string
	// Reason describes what was wrong with the input.
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.Op, e.Reason)
}

func invalidInput(op, format string, args ...any) error {
	return &InvalidInputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
