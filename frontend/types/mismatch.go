package types

import (
	"fmt"
	"strings"
)

// Mismatch is a single pair of types which failed to unify
type Mismatch struct {
	Expected, Actual Type
}

// TypeMismatch is returned when two types cannot be unified.
//
// Trace holds the enclosing pairs of types which were being unified when the clash
// happened, outermost first, so that the full nested path can be shown.
type TypeMismatch struct {
	Mismatch
	Trace []Mismatch
	// Reason may be ""
	Reason string
}

func (e *TypeMismatch) Error() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("type mismatch: expected type '%v', but found a different type '%v'", e.Expected, e.Actual))
	if e.Reason != "" {
		sb.WriteString(" (" + e.Reason + ")")
	}
	for _, frame := range e.Trace {
		sb.WriteString(fmt.Sprintf("\n  while unifying '%v' with '%v'", frame.Expected, frame.Actual))
	}
	return sb.String()
}

func mismatch(expected, actual Type) *TypeMismatch {
	return &TypeMismatch{Mismatch: Mismatch{Expected: expected, Actual: actual}}
}

// within prepends the outer pair of types to the trace of err, if err is a *TypeMismatch
func within(err error, expected, actual Type) error {
	asMismatch, ok := err.(*TypeMismatch)
	if !ok {
		return err
	}
	trace := make([]Mismatch, 0, len(asMismatch.Trace)+1)
	trace = append(trace, Mismatch{Expected: expected, Actual: actual})
	trace = append(trace, asMismatch.Trace...)
	return &TypeMismatch{
		Mismatch: asMismatch.Mismatch,
		Trace:    trace,
		Reason:   asMismatch.Reason,
	}
}
