package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// AngularVelocityBetween calculates the constant body angular velocity (rad/s) that rotates from into
// to over a time difference dt.
func AngularVelocityBetween(from, to Orientation, dt float64) r3.Vector {
	return LogSO3(from.RotationMatrix().Inverse().Compose(to.RotationMatrix())).Mul(1 / dt)
}

// QuatToAngVel calculates an angular velocity based on an orientation change expressed in quaternions over a time difference.
func QuatToAngVel(diffQ quat.Number, dt float64) r3.Vector {
	return LogSO3(QuatToRotationMatrix(diffQ)).Mul(1 / dt)
}

// TwistBetween calculates the constant body twist that carries from into to over a time difference dt.
// The result is a valid velocity derivative for a CMTM built on from.
func TwistBetween(from, to Transform, dt float64) Twist {
	return LogSE3(from.Inverse().Compose(to)).Scale(1 / dt)
}
