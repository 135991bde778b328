package model

import "errors"

// LoadError reports that an artifact could not be turned into a Handle:
// missing, corrupt, or incompatible with this runtime.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return "load model " + e.Path + ": " + e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is (or wraps) a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// ExecutionError reports a failed Execute call. It never accompanies a
// partial result.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return "execute: " + e.Err.Error() }

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsExecutionError reports whether err is (or wraps) an ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
