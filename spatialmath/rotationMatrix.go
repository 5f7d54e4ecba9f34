// Package spatialmath defines the rigid-body algebra of rotations (SO(3)) and rigid transforms (SE(3)).
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 orthonormal, right-handed matrix representing an element of SO(3).
// It is a value type: every operation returns a new RotationMatrix and never modifies its receiver.
// Composing many rotations is not re-orthonormalized, so long chains may drift by floating point error.
type RotationMatrix struct {
	mat mgl64.Mat3
}

// IdentityRotation returns the rotation that leaves every vector unchanged.
func IdentityRotation() RotationMatrix {
	return RotationMatrix{mgl64.Ident3()}
}

// NewRotationMatrix creates a rotation from 9 row-major values. It returns ErrInvalidRotation if
// the matrix is not orthonormal or does not have determinant 1, within RotationTolerance.
func NewRotationMatrix(m []float64) (RotationMatrix, error) {
	if len(m) != 9 {
		return RotationMatrix{}, newInvalidRotationError(errors.Errorf("expected 9 values, got %d", len(m)))
	}
	if err := checkRotation(mat.NewDense(3, 3, m)); err != nil {
		return RotationMatrix{}, err
	}
	return RotationMatrix{mat3FromRows(m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])}, nil
}

// NewRotationMatrixFromMat3 validates and wraps an mgl64.Mat3.
func NewRotationMatrixFromMat3(m mgl64.Mat3) (RotationMatrix, error) {
	if err := checkRotation(Mat3ToDense(m)); err != nil {
		return RotationMatrix{}, err
	}
	return RotationMatrix{m}, nil
}

func checkRotation(r mat.Matrix) error {
	var errs []error
	var rrt mat.Dense
	rrt.Mul(r, r.T())
	if !mat.EqualApprox(&rrt, mat.NewDiagDense(3, []float64{1, 1, 1}), RotationTolerance) {
		errs = append(errs, errors.New("rows are not orthonormal"))
	}
	if det := mat.Det(r); !(math.Abs(det-1) <= RotationTolerance) {
		errs = append(errs, errors.Errorf("determinant is %v, not 1", det))
	}
	return newInvalidRotationError(errs...)
}

// NewRotationFromAxisAngle builds a rotation of angle radians about axis. The axis does not need to be
// normalized; a zero axis yields the identity.
func NewRotationFromAxisAngle(axis r3.Vector, angle float64) RotationMatrix {
	norm := axis.Norm()
	if norm == 0 {
		return IdentityRotation()
	}
	return ExpSO3(axis.Mul(angle / norm))
}

// At returns the entry at row, col.
func (rm RotationMatrix) At(row, col int) float64 {
	return rm.mat.At(row, col)
}

// Row returns the given row as a vector.
func (rm RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat.At(row, 0), Y: rm.mat.At(row, 1), Z: rm.mat.At(row, 2)}
}

// Mat3 returns the matrix in mathgl form.
func (rm RotationMatrix) Mat3() mgl64.Mat3 {
	return rm.mat
}

// Dense returns a copy of the matrix as a 3x3 gonum matrix.
func (rm RotationMatrix) Dense() *mat.Dense {
	return Mat3ToDense(rm.mat)
}

// Compose returns rm·other, the rotation that applies other first and then rm.
func (rm RotationMatrix) Compose(other RotationMatrix) RotationMatrix {
	return RotationMatrix{rm.mat.Mul3(other.mat)}
}

// Inverse returns the transpose of rm.
func (rm RotationMatrix) Inverse() RotationMatrix {
	return RotationMatrix{rm.mat.Transpose()}
}

// Apply rotates v.
func (rm RotationMatrix) Apply(v r3.Vector) r3.Vector {
	return mulVec(rm.mat, v)
}

// Log returns the rotation vector of rm, see LogSO3.
func (rm RotationMatrix) Log() r3.Vector {
	return LogSO3(rm)
}

// RotationMatrix returns rm; it lets RotationMatrix satisfy Orientation.
func (rm RotationMatrix) RotationMatrix() RotationMatrix {
	return rm
}

// AxisAngles returns the rotation as an R4 axis angle with a non-negative angle.
func (rm RotationMatrix) AxisAngles() *R4AA {
	return R3ToR4(LogSO3(rm))
}

// Quaternion returns the unit quaternion of rm with a non-negative real part.
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/matrixToQuaternion/
func (rm RotationMatrix) Quaternion() quat.Number {
	m := rm.mat
	var q quat.Number
	switch tr := m.Trace(); {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = quat.Number{
			Real: s / 4,
			Imag: (m.At(2, 1) - m.At(1, 2)) / s,
			Jmag: (m.At(0, 2) - m.At(2, 0)) / s,
			Kmag: (m.At(1, 0) - m.At(0, 1)) / s,
		}
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := 2 * math.Sqrt(1+m.At(0, 0)-m.At(1, 1)-m.At(2, 2))
		q = quat.Number{
			Real: (m.At(2, 1) - m.At(1, 2)) / s,
			Imag: s / 4,
			Jmag: (m.At(0, 1) + m.At(1, 0)) / s,
			Kmag: (m.At(0, 2) + m.At(2, 0)) / s,
		}
	case m.At(1, 1) > m.At(2, 2):
		s := 2 * math.Sqrt(1+m.At(1, 1)-m.At(0, 0)-m.At(2, 2))
		q = quat.Number{
			Real: (m.At(0, 2) - m.At(2, 0)) / s,
			Imag: (m.At(0, 1) + m.At(1, 0)) / s,
			Jmag: s / 4,
			Kmag: (m.At(1, 2) + m.At(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m.At(2, 2)-m.At(0, 0)-m.At(1, 1))
		q = quat.Number{
			Real: (m.At(1, 0) - m.At(0, 1)) / s,
			Imag: (m.At(0, 2) + m.At(2, 0)) / s,
			Jmag: (m.At(1, 2) + m.At(2, 1)) / s,
			Kmag: s / 4,
		}
	}
	if q.Real < 0 {
		q = Flip(q)
	}
	return q
}

// EulerAngles returns the roll, pitch and yaw that generate rm, see NewRotationFromEulerAngles.
func (rm RotationMatrix) EulerAngles() *EulerAngles {
	m := rm.mat
	switch s := m.At(2, 0); {
	case math.Abs(s) < 1:
		pitch := -math.Asin(s)
		c := math.Cos(pitch)
		return &EulerAngles{
			Roll:  math.Atan2(m.At(2, 1)/c, m.At(2, 2)/c),
			Pitch: pitch,
			Yaw:   math.Atan2(m.At(1, 0)/c, m.At(0, 0)/c),
		}
	case s <= -1:
		// gimbal lock, only roll-yaw is observable
		return &EulerAngles{Roll: math.Atan2(m.At(0, 1), m.At(0, 2)), Pitch: math.Pi / 2}
	default:
		return &EulerAngles{Roll: math.Atan2(-m.At(0, 1), -m.At(0, 2)), Pitch: -math.Pi / 2}
	}
}

// QuatToRotationMatrix converts a quaternion to a rotation. The quaternion is normalized first; the
// zero quaternion yields the identity.
func QuatToRotationMatrix(q quat.Number) RotationMatrix {
	n := quat.Abs(q)
	if n == 0 {
		return IdentityRotation()
	}
	q = quat.Scale(1/n, q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return RotationMatrix{mat3FromRows(
		1-2*(y*y+z*z), 2*(x*y-w*z), 2*(x*z+w*y),
		2*(x*y+w*z), 1-2*(x*x+z*z), 2*(y*z-w*x),
		2*(x*z-w*y), 2*(y*z+w*x), 1-2*(x*x+y*y),
	)}
}

// RotationAlmostEqual reports whether every entry of a and b differs by less than tol.
func RotationAlmostEqual(a, b RotationMatrix, tol float64) bool {
	for i := range a.mat {
		if !(math.Abs(a.mat[i]-b.mat[i]) < tol) {
			return false
		}
	}
	return true
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}
