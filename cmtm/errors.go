package cmtm

import (
	"github.com/pkg/errors"
)

var (
	// ErrDimensionMismatch is returned when two CMTMs of different order or kind are combined, or when a
	// stacked vector does not match the size of a CMTM.
	ErrDimensionMismatch = errors.New("cmtm dimension mismatch")

	// ErrDerivativeOutOfRange is returned when asking for a derivative order the CMTM does not carry.
	ErrDerivativeOutOfRange = errors.New("derivative order out of range")
)

// newDimensionMismatchError is used when composing CMTMs that do not share an order and kind.
func newDimensionMismatchError(a, b *CMTM) error {
	return errors.Wrapf(ErrDimensionMismatch, "cannot compose %s with %s", a, b)
}

// newDerivativeOutOfRangeError is used when k is outside 1..order.
func newDerivativeOutOfRangeError(k, order int) error {
	return errors.Wrapf(ErrDerivativeOutOfRange, "derivative %d requested, valid orders are 1..%d", k, order)
}
