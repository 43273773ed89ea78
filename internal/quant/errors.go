package quant

import (
	"errors"
	"fmt"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// Common errors.
var (
	ErrNoExternalName      = errors.New("quantized dtype has no external name")
	ErrZeroPointRequired   = errors.New("unsigned quantized dtype requires a zero point")
	ErrUnexpectedZeroPoint = errors.New("signed quantized dtype takes no zero point")
	ErrInvalidRange        = errors.New("qmin must not exceed qmax")
	ErrNotNumeric          = errors.New("array is not numeric")
)

// RangeError reports a zero point outside the descriptor's value range.
type RangeError struct {
	Name      string
	ZeroPoint int
	QMin      int64
	QMax      int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("zero_point %d should be within [%d, %d] for %s", e.ZeroPoint, e.QMin, e.QMax, e.Name)
}

// MismatchError reports a type that is not the quantized dtype a conversion expects.
type MismatchError struct {
	Expected Descriptor
	Got      tensor.Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("dtype should be a %s dtype, got %s", e.Expected, e.Got)
}
