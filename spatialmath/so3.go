package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// ExpSO3 maps a rotation vector (axis scaled by angle, e.g. angular velocity times time) to a rotation
// using Rodrigues' formula R = I + (sinθ/θ)·ŵ + ((1-cosθ)/θ²)·ŵ².
func ExpSO3(w r3.Vector) RotationMatrix {
	theta2 := w.Norm2()
	theta := math.Sqrt(theta2)
	var a, b float64
	if theta < smallAngle {
		a = 1 - theta2/6 + theta2*theta2/120
		b = 0.5 - theta2/24 + theta2*theta2/720
	} else {
		s, c := math.Sincos(theta)
		a = s / theta
		b = (1 - c) / theta2
	}
	k := Hat(w)
	return RotationMatrix{mgl64.Ident3().Add(k.Mul(a)).Add(k.Mul3(k).Mul(b))}
}

// LogSO3 returns the rotation vector w, with |w| in [0, π], such that ExpSO3(w) reproduces rm.
// Rotations of exactly π have two valid answers (w and -w); either one may be returned.
func LogSO3(rm RotationMatrix) r3.Vector {
	m := rm.mat
	// 2·sinθ·n
	axis := r3.Vector{
		X: m.At(2, 1) - m.At(1, 2),
		Y: m.At(0, 2) - m.At(2, 0),
		Z: m.At(1, 0) - m.At(0, 1),
	}
	sin := axis.Norm() / 2
	cos := clamp((m.Trace()-1)/2, -1, 1)
	theta := math.Atan2(sin, cos)

	switch {
	case theta < smallAngle:
		theta2 := theta * theta
		return axis.Mul(0.5 * (1 + theta2/6 + 7*theta2*theta2/360))
	case math.Pi-theta < nearPiAngle:
		return logNearPi(m, theta, cos, axis)
	default:
		return axis.Mul(theta / (2 * sin))
	}
}

// logNearPi reads the axis out of the symmetric part of R, (R+Rᵗ)/2 = cosθ·I + (1-cosθ)·n·nᵗ, which
// stays well conditioned where the antisymmetric part vanishes.
func logNearPi(m mgl64.Mat3, theta, cos float64, axis r3.Vector) r3.Vector {
	oneMinusCos := 1 - cos
	diag := [3]float64{
		(m.At(0, 0) - cos) / oneMinusCos,
		(m.At(1, 1) - cos) / oneMinusCos,
		(m.At(2, 2) - cos) / oneMinusCos,
	}
	k := 0
	for i := 1; i < 3; i++ {
		if diag[i] > diag[k] {
			k = i
		}
	}
	nk := math.Sqrt(math.Max(diag[k], 0))

	var n [3]float64
	for j := 0; j < 3; j++ {
		if j == k {
			n[j] = nk
			continue
		}
		n[j] = (m.At(j, k) + m.At(k, j)) / 2 / oneMinusCos / nk
	}
	unit := r3.Vector{X: n[0], Y: n[1], Z: n[2]}.Normalize()
	if unit.Dot(axis) < 0 {
		unit = unit.Mul(-1)
	}
	return unit.Mul(theta)
}

// LeftJacobianSO3 returns V(w) = I + ((1-cosθ)/θ²)·ŵ + ((θ-sinθ)/θ³)·ŵ², the matrix that maps the
// linear part of a twist to the translation of its exponential.
func LeftJacobianSO3(w r3.Vector) mgl64.Mat3 {
	theta2 := w.Norm2()
	theta := math.Sqrt(theta2)
	var b, c float64
	if theta < smallAngle {
		b = 0.5 - theta2/24 + theta2*theta2/720
		c = 1.0/6 - theta2/120 + theta2*theta2/5040
	} else {
		// 1-cosθ = 2sin²(θ/2)
		sh := math.Sin(theta / 2)
		b = 2 * sh * sh / theta2
		c = (theta - math.Sin(theta)) / (theta2 * theta)
	}
	k := Hat(w)
	return mgl64.Ident3().Add(k.Mul(b)).Add(k.Mul3(k).Mul(c))
}

// InverseLeftJacobianSO3 returns V(w)⁻¹ = I - ½ŵ + ((1 - θ·sinθ/(2(1-cosθ)))/θ²)·ŵ². It is finite for
// every |w| <= π, which covers the whole range of LogSO3. θ·sinθ/(2(1-cosθ)) is evaluated as (θ/2)·cot(θ/2)
// since 1-cosθ loses most of its digits for small θ.
func InverseLeftJacobianSO3(w r3.Vector) mgl64.Mat3 {
	theta2 := w.Norm2()
	theta := math.Sqrt(theta2)
	var d float64
	if theta < smallAngle {
		d = 1.0/12 + theta2/720 + theta2*theta2/30240
	} else {
		half := theta / 2
		s, c := math.Sincos(half)
		d = (1 - half*c/s) / theta2
	}
	k := Hat(w)
	return mgl64.Ident3().Sub(k.Mul(0.5)).Add(k.Mul3(k).Mul(d))
}
