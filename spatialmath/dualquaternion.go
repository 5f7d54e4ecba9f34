package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// DualQuaternion returns t as a unit dual quaternion q_r + ε·½·p·q_r, where q_r is the rotation
// quaternion and p the pure translation quaternion. Products of these dual quaternions follow
// Transform.Compose.
func (t Transform) DualQuaternion() dualquat.Number {
	qr := t.rotation.Quaternion()
	p := quat.Number{Imag: t.translation.X / 2, Jmag: t.translation.Y / 2, Kmag: t.translation.Z / 2}
	return dualquat.Number{
		Real: qr,
		Dual: quat.Mul(p, qr),
	}
}

// NewTransformFromDualQuaternion converts a dual quaternion into a transform. The real part is
// normalized, so it only has to be non-zero.
func NewTransformFromDualQuaternion(dq dualquat.Number) Transform {
	// Ensure we are working with a unit dual quaternion
	if n := quat.Abs(dq.Real); n != 0 && n != 1 {
		dq.Real = quat.Scale(1/n, dq.Real)
		dq.Dual = quat.Scale(1/n, dq.Dual)
	}
	p := quat.Scale(2, quat.Mul(dq.Dual, quat.Conj(dq.Real)))
	return NewTransform(QuatToRotationMatrix(dq.Real), r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag})
}

// ComposeDualQuaternions multiplies two transforms in dual quaternion form and converts back.
func ComposeDualQuaternions(a, b Transform) Transform {
	return NewTransformFromDualQuaternion(dualquat.Mul(a.DualQuaternion(), b.DualQuaternion()))
}
