// Package ice implements Internal Compiler Error reporting:
// an analysis observing a state the type system should have excluded is a
// compiler bug, not a user diagnostic. Modeled on Orizon's
// internal/errors standardized-error pattern.
package ice

import (
	"fmt"
	"runtime"
)

// Error is an Internal Compiler Error. It is never meant to be handled —
// only reported and used to abort compilation of the offending function.
type Error struct {
	Message string
	Caller  string
	BIRDump string // textual BIR snapshot at the point of failure, if any
}

func (e *Error) Error() string {
	return fmt.Sprintf("ICE: %s (at %s)", e.Message, e.Caller)
}

// New constructs an ICE, capturing the immediate caller for diagnosis.
func New(format string, args ...interface{}) *Error {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}
	return &Error{Message: fmt.Sprintf(format, args...), Caller: caller}
}

// WithDump attaches a BIR text dump to the error, // "abort compilation with an ICE diagnostic including the offending BIR
// dump".
func (e *Error) WithDump(dump string) *Error {
	e.BIRDump = dump
	return e
}
