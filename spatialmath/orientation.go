package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
	RotationMatrix() RotationMatrix
}

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D Euclidean space.
// The rotation is R = Rz(Yaw)·Ry(Pitch)·Rx(Roll): roll about x first, then pitch about y, then yaw about z,
// all in the fixed frame.
// Euler angles are terrible, don't use them.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewRotationFromEulerAngles builds R = Rz(yaw)·Ry(pitch)·Rx(roll).
func NewRotationFromEulerAngles(roll, pitch, yaw float64) RotationMatrix {
	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)
	sy, cy := math.Sincos(yaw)
	return RotationMatrix{mat3FromRows(
		cy*cp, cy*sp*sr-sy*cr, cy*sp*cr+sy*sr,
		sy*cp, sy*sp*sr+cy*cr, sy*sp*cr-cy*sr,
		-sp, cp*sr, cp*cr,
	)}
}

// AxisAngles returns the orientation in axis angle representation.
func (ea *EulerAngles) AxisAngles() *R4AA {
	return ea.RotationMatrix().AxisAngles()
}

// Quaternion returns orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	return ea.RotationMatrix().Quaternion()
}

// EulerAngles returns orientation in Euler angle representation.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (ea *EulerAngles) RotationMatrix() RotationMatrix {
	return NewRotationFromEulerAngles(ea.Roll, ea.Pitch, ea.Yaw)
}

// OrientationAlmostEqual will return a bool describing whether 2 orientations are approximately the same.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return RotationAlmostEqual(o1.RotationMatrix(), o2.RotationMatrix(), 1e-5)
}

// OrientationBetween returns the rotation that takes o1 to o2, i.e. o2 = OrientationBetween(o1, o2)·o1.
func OrientationBetween(o1, o2 Orientation) RotationMatrix {
	return o2.RotationMatrix().Compose(o1.RotationMatrix().Inverse())
}
