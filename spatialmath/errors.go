package spatialmath

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ErrInvalidRotation is returned when a matrix handed to a constructor is not a proper rotation.
var ErrInvalidRotation = errors.New("invalid rotation matrix")

// newInvalidRotationError wraps every failed check into a single ErrInvalidRotation.
func newInvalidRotationError(causes ...error) error {
	cause := multierr.Combine(causes...)
	if cause == nil {
		return nil
	}
	return errors.Wrap(ErrInvalidRotation, cause.Error())
}
