package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Twist is an element of se(3) ordered (ωx, ωy, ωz, vx, vy, vz): angular part first, then linear.
type Twist [6]float64

// NewTwist joins an angular and a linear part.
func NewTwist(angular, linear r3.Vector) Twist {
	return Twist{angular.X, angular.Y, angular.Z, linear.X, linear.Y, linear.Z}
}

// TwistFromSlice copies the first 6 values of s.
func TwistFromSlice(s []float64) Twist {
	var tw Twist
	copy(tw[:], s)
	return tw
}

// Angular returns ω.
func (tw Twist) Angular() r3.Vector {
	return r3.Vector{X: tw[0], Y: tw[1], Z: tw[2]}
}

// Linear returns v.
func (tw Twist) Linear() r3.Vector {
	return r3.Vector{X: tw[3], Y: tw[4], Z: tw[5]}
}

// Slice returns a fresh slice holding the 6 components.
func (tw Twist) Slice() []float64 {
	s := make([]float64, 6)
	copy(s, tw[:])
	return s
}

// Add returns tw + other.
func (tw Twist) Add(other Twist) Twist {
	for i := range tw {
		tw[i] += other[i]
	}
	return tw
}

// Scale returns f·tw.
func (tw Twist) Scale(f float64) Twist {
	for i := range tw {
		tw[i] *= f
	}
	return tw
}

// Hat returns the 4x4 se(3) matrix [[ω̂, v], [0, 0]].
func (tw Twist) Hat() mgl64.Mat4 {
	w := Hat(tw.Angular())
	var m mgl64.Mat4
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, w.At(i, j))
		}
		m.Set(i, 3, tw[3+i])
	}
	return m
}

// TwistFromHat inverts Twist.Hat. The rotational block is symmetrized, see Vee.
func TwistFromHat(m mgl64.Mat4) Twist {
	w := Vee(mat3FromRows(
		m.At(0, 0), m.At(0, 1), m.At(0, 2),
		m.At(1, 0), m.At(1, 1), m.At(1, 2),
		m.At(2, 0), m.At(2, 1), m.At(2, 2),
	))
	return NewTwist(w, r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)})
}

// Ad returns the 6x6 matrix of the Lie bracket with tw, [[ω̂, 0], [v̂, ω̂]]. It is the derivative of
// Transform.Adjoint along tw.
func (tw Twist) Ad() *mat.Dense {
	w := Hat(tw.Angular())
	v := Hat(tw.Linear())
	ad := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ad.Set(i, j, w.At(i, j))
			ad.Set(i+3, j+3, w.At(i, j))
			ad.Set(i+3, j, v.At(i, j))
		}
	}
	return ad
}

// TwistAlmostEqual reports whether every component of a and b differs by less than tol.
func TwistAlmostEqual(a, b Twist, tol float64) bool {
	return R3VectorAlmostEqual(a.Angular(), b.Angular(), tol) && R3VectorAlmostEqual(a.Linear(), b.Linear(), tol)
}
