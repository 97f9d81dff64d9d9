package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnsupportedTask = errors.New("unsupported task")
	ErrBadFormat       = errors.New("invalid annotation format")
	ErrGeneration      = errors.New("generation failed")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotImplemented  = errors.New("not implemented")
)
