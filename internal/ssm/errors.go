package ssm

import "errors"

// Domain errors for model construction.
var (
	// ErrInvalidDimension indicates a state dimension below one.
	ErrInvalidDimension = errors.New("ssm: state dimension must be at least 1")

	// ErrShapeMismatch indicates A, B and C disagree on the state dimension.
	ErrShapeMismatch = errors.New("ssm: matrix shapes are inconsistent")
)
