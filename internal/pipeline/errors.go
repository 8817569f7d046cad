package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Stitch is a *StageError wrapping
// one of these, or a context error on cancellation.
var (
	ErrValidation = errors.New("invalid request")
	ErrIO         = errors.New("cannot open clip")
	ErrDecode     = errors.New("cannot decode clip")
	ErrEncode     = errors.New("cannot encode output")
)

// StageError names the stage a run failed in.
type StageError struct {
	Stage Stage
	// Kind is one of the Err* kinds, nil on cancellation.
	Kind error
	Err  error
}

func (e *StageError) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}
