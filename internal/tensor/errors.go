package tensor

import "errors"

// Common errors.
var (
	ErrAxisOutOfRange   = errors.New("axis out of range")
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrUnsupportedDType = errors.New("unsupported dtype")
)
