package vetting

import "fmt"

// VettingError reports a schema, referential, or graph-invariant violation.
// Vetting is all-or-nothing: any VettingError aborts catalog construction
// and no partial catalog is exposed.
type VettingError struct {
	Message string
}

func (e *VettingError) Error() string {
	return "vetting: " + e.Message
}

func errorf(format string, args ...any) error {
	return &VettingError{Message: fmt.Sprintf(format, args...)}
}
