// Package modeling implements the model-editing and generation operations
// behind the tool surface. Operations work on a decoded *domain.DomainModel;
// acquiring and persisting the model is the caller's job.
package modeling

import (
	"errors"
	"fmt"
)

// Success is the text returned by operations that have nothing else to say.
const Success = "Success"

// Failure is an expected operation error reported back to the caller as
// text. Anything that is not a Failure is a fault.
type Failure struct {
	Op  string // "adding class 'Book'"
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("Error %s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(err error, format string, args ...any) error {
	return &Failure{Op: fmt.Sprintf(format, args...), Err: err}
}

// AsFailure reports whether err is (or wraps) a Failure.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
