package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

const (
	// RotationTolerance bounds how far R·Rᵗ may stray from I, and det(R) from 1, for a matrix to be
	// accepted as a rotation.
	RotationTolerance = 1e-6

	// Below this angle (radians) the exp/log coefficients are evaluated from their Taylor series.
	smallAngle = 1e-4

	// Within this distance of π the rotation axis is read from the symmetric part of R.
	nearPiAngle = 1e-3
)

// mat3FromRows builds a column-major mgl64.Mat3 from row-major entries.
func mat3FromRows(m00, m01, m02, m10, m11, m12, m20, m21, m22 float64) mgl64.Mat3 {
	return mgl64.Mat3{m00, m10, m20, m01, m11, m21, m02, m12, m22}
}

// Hat returns the skew-symmetric cross-product matrix of v, so that Hat(v)·u = v×u.
func Hat(v r3.Vector) mgl64.Mat3 {
	return mat3FromRows(
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	)
}

// Vee recovers the vector of a skew-symmetric matrix. The off-diagonal entries are symmetrized, so m
// does not need to be exactly skew-symmetric.
func Vee(m mgl64.Mat3) r3.Vector {
	return r3.Vector{
		X: 0.5 * (m.At(2, 1) - m.At(1, 2)),
		Y: 0.5 * (m.At(0, 2) - m.At(2, 0)),
		Z: 0.5 * (m.At(1, 0) - m.At(0, 1)),
	}
}

func mulVec(m mgl64.Mat3, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

// Mat3ToDense copies a 3x3 mathgl matrix into a gonum dense matrix.
func Mat3ToDense(m mgl64.Mat3) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m.At(i, j))
		}
	}
	return d
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}
