package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Transform is a rigid transform (R, p), an element of SE(3). It maps a point x to R·x + p.
// Like RotationMatrix it is an immutable value.
type Transform struct {
	rotation    RotationMatrix
	translation r3.Vector
}

// IdentityTransform returns the transform with no rotation and no translation.
func IdentityTransform() Transform {
	return Transform{rotation: IdentityRotation()}
}

// NewTransform pairs a rotation with a translation.
func NewTransform(rotation RotationMatrix, translation r3.Vector) Transform {
	return Transform{rotation: rotation, translation: translation}
}

// NewTransformFromAxisAngleTranslation rotates by angle about axis and then translates.
func NewTransformFromAxisAngleTranslation(axis r3.Vector, angle float64, translation r3.Vector) Transform {
	return NewTransform(NewRotationFromAxisAngle(axis, angle), translation)
}

// NewTransformFromMatrix reads a 4x4 homogeneous matrix. The top-left block must be a rotation and the
// bottom row must be [0 0 0 1], otherwise ErrInvalidRotation is returned.
func NewTransformFromMatrix(m mgl64.Mat4) (Transform, error) {
	rot, err := NewRotationMatrix([]float64{
		m.At(0, 0), m.At(0, 1), m.At(0, 2),
		m.At(1, 0), m.At(1, 1), m.At(1, 2),
		m.At(2, 0), m.At(2, 1), m.At(2, 2),
	})
	if err != nil {
		return Transform{}, err
	}
	for j, want := range []float64{0, 0, 0, 1} {
		if !(math.Abs(m.At(3, j)-want) <= RotationTolerance) {
			return Transform{}, newInvalidRotationError(errors.Errorf("bottom row of homogeneous matrix is %v, not [0 0 0 1]", m.Row(3)))
		}
	}
	return NewTransform(rot, r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}), nil
}

// Rotation returns R.
func (t Transform) Rotation() RotationMatrix {
	return t.rotation
}

// Translation returns p.
func (t Transform) Translation() r3.Vector {
	return t.translation
}

// Compose returns t·other = (Rt·Ro, Rt·po + pt): other is applied first, then t.
func (t Transform) Compose(other Transform) Transform {
	return Transform{
		rotation:    t.rotation.Compose(other.rotation),
		translation: t.rotation.Apply(other.translation).Add(t.translation),
	}
}

// Inverse returns (Rᵗ, -Rᵗ·p).
func (t Transform) Inverse() Transform {
	inv := t.rotation.Inverse()
	return Transform{rotation: inv, translation: inv.Apply(t.translation).Mul(-1)}
}

// Apply transforms a point: R·x + p.
func (t Transform) Apply(x r3.Vector) r3.Vector {
	return t.rotation.Apply(x).Add(t.translation)
}

// Log returns the twist of t, see LogSE3.
func (t Transform) Log() Twist {
	return LogSE3(t)
}

// Adjoint returns the 6x6 matrix [[R, 0], [p̂·R, R]] that re-expresses a twist (ω, v) given in the
// frame of t in the parent frame.
func (t Transform) Adjoint() *mat.Dense {
	r := t.rotation.mat
	pr := Hat(t.translation).Mul3(r)
	ad := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ad.Set(i, j, r.At(i, j))
			ad.Set(i+3, j+3, r.At(i, j))
			ad.Set(i+3, j, pr.At(i, j))
		}
	}
	return ad
}

// AdjointTwist applies Adjoint to tw without building the 6x6 matrix.
func (t Transform) AdjointTwist(tw Twist) Twist {
	w := t.rotation.Apply(tw.Angular())
	v := t.translation.Cross(w).Add(t.rotation.Apply(tw.Linear()))
	return NewTwist(w, v)
}

// Matrix returns the 4x4 homogeneous matrix [[R, p], [0, 1]].
func (t Transform) Matrix() mgl64.Mat4 {
	m := mgl64.Ident4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, t.rotation.At(i, j))
		}
	}
	m.Set(0, 3, t.translation.X)
	m.Set(1, 3, t.translation.Y)
	m.Set(2, 3, t.translation.Z)
	return m
}

// ExpSE3 maps a twist ξ = (ω, v), e.g. a body velocity times time, to the rigid transform
// (ExpSO3(ω), V(ω)·v), see LeftJacobianSO3.
func ExpSE3(xi Twist) Transform {
	w := xi.Angular()
	return Transform{
		rotation:    ExpSO3(w),
		translation: mulVec(LeftJacobianSO3(w), xi.Linear()),
	}
}

// LogSE3 inverts ExpSE3 for rotations of at most π. The angular part comes from LogSO3, including its
// handling of rotations near π, and the linear part is V(ω)⁻¹·p.
func LogSE3(t Transform) Twist {
	w := LogSO3(t.rotation)
	return NewTwist(w, mulVec(InverseLeftJacobianSO3(w), t.translation))
}

// TransformAlmostEqual reports whether the rotations and translations of a and b agree within tol.
func TransformAlmostEqual(a, b Transform, tol float64) bool {
	return RotationAlmostEqual(a.rotation, b.rotation, tol) && R3VectorAlmostEqual(a.translation, b.translation, tol)
}
