package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

const tol = 1e-9

func randomRotationVector(rnd *rand.Rand, maxAngle float64) r3.Vector {
	axis := r3.Vector{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}.Normalize()
	return axis.Mul(rnd.Float64() * maxAngle)
}

func isRotation(t *testing.T, rm RotationMatrix) {
	t.Helper()
	for _, v := range rm.Mat3() {
		test.That(t, math.IsNaN(v) || math.IsInf(v, 0), test.ShouldBeFalse)
	}
	ident := rm.Compose(rm.Inverse())
	test.That(t, RotationAlmostEqual(ident, IdentityRotation(), 1e-12), test.ShouldBeTrue)
	test.That(t, rm.Mat3().Det(), test.ShouldAlmostEqual, 1, 1e-12)
}

func TestExpSO3(t *testing.T) {
	t.Run("quarter turn about z", func(t *testing.T) {
		rm := ExpSO3(r3.Vector{Z: math.Pi / 2})
		out := rm.Apply(r3.Vector{X: 1})
		test.That(t, R3VectorAlmostEqual(out, r3.Vector{Y: 1}, 1e-12), test.ShouldBeTrue)
	})

	t.Run("zero vector", func(t *testing.T) {
		test.That(t, ExpSO3(r3.Vector{}), test.ShouldResemble, IdentityRotation())
	})

	t.Run("axis angle matches rotation vector", func(t *testing.T) {
		a := NewRotationFromAxisAngle(r3.Vector{X: 0, Y: 2, Z: 0}, math.Pi/3)
		b := ExpSO3(r3.Vector{Y: math.Pi / 3})
		test.That(t, RotationAlmostEqual(a, b, 1e-15), test.ShouldBeTrue)
		test.That(t, NewRotationFromAxisAngle(r3.Vector{}, 1), test.ShouldResemble, IdentityRotation())
	})

	t.Run("near singular angles stay orthonormal", func(t *testing.T) {
		axis := r3.Vector{X: 1, Y: -2, Z: 0.5}.Normalize()
		for _, angle := range []float64{1e-8, smallAngle, math.Pi - 1e-8, math.Pi} {
			isRotation(t, ExpSO3(axis.Mul(angle)))
		}
	})

	t.Run("taylor branch is continuous", func(t *testing.T) {
		axis := r3.Vector{X: 0.3, Y: 0.4, Z: 0.5}.Normalize()
		below := ExpSO3(axis.Mul(smallAngle * (1 - 1e-9)))
		above := ExpSO3(axis.Mul(smallAngle * (1 + 1e-9)))
		test.That(t, RotationAlmostEqual(below, above, 1e-12), test.ShouldBeTrue)
	})
}

func TestLogSO3(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(1))
		for i := 0; i < 1000; i++ {
			w := randomRotationVector(rnd, math.Pi-1e-6)
			got := LogSO3(ExpSO3(w))
			test.That(t, R3VectorAlmostEqual(got, w, tol), test.ShouldBeTrue)
		}
	})

	t.Run("literal", func(t *testing.T) {
		w := r3.Vector{X: 0.1, Y: 0.2, Z: 0.3}
		test.That(t, R3VectorAlmostEqual(ExpSO3(w).Log(), w, 1e-12), test.ShouldBeTrue)
	})

	t.Run("tiny angles", func(t *testing.T) {
		for _, angle := range []float64{0, 1e-12, 1e-8, 1e-5} {
			w := r3.Vector{X: 1, Y: 1, Z: -1}.Normalize().Mul(angle)
			test.That(t, R3VectorAlmostEqual(LogSO3(ExpSO3(w)), w, 1e-15), test.ShouldBeTrue)
		}
	})

	t.Run("near pi", func(t *testing.T) {
		axis := r3.Vector{X: 0.2, Y: -0.7, Z: 0.4}.Normalize()
		for _, angle := range []float64{math.Pi - nearPiAngle*2, math.Pi - nearPiAngle/2, math.Pi - 1e-6, math.Pi - 1e-8} {
			w := axis.Mul(angle)
			got := LogSO3(ExpSO3(w))
			test.That(t, R3VectorAlmostEqual(got, w, tol), test.ShouldBeTrue)
		}
	})

	t.Run("exactly pi reconstructs", func(t *testing.T) {
		for _, axis := range []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}, {X: 1, Y: 1}, {X: -1, Y: 2, Z: 3}} {
			rm := NewRotationFromAxisAngle(axis, math.Pi)
			w := LogSO3(rm)
			test.That(t, w.Norm(), test.ShouldAlmostEqual, math.Pi, 1e-12)
			test.That(t, RotationAlmostEqual(ExpSO3(w), rm, 1e-12), test.ShouldBeTrue)
		}
	})
}

func TestRotationGroup(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		a := ExpSO3(randomRotationVector(rnd, math.Pi))
		b := ExpSO3(randomRotationVector(rnd, math.Pi))
		c := ExpSO3(randomRotationVector(rnd, math.Pi))

		test.That(t, RotationAlmostEqual(a.Compose(a.Inverse()), IdentityRotation(), 1e-12), test.ShouldBeTrue)
		test.That(t, RotationAlmostEqual(a.Compose(b).Compose(c), a.Compose(b.Compose(c)), 1e-12), test.ShouldBeTrue)

		v := r3.Vector{X: rnd.Float64(), Y: rnd.Float64(), Z: rnd.Float64()}
		test.That(t, R3VectorAlmostEqual(a.Compose(b).Apply(v), a.Apply(b.Apply(v)), 1e-12), test.ShouldBeTrue)
		test.That(t, a.Apply(v).Norm(), test.ShouldAlmostEqual, v.Norm(), 1e-12)
	}
}

func TestNewRotationMatrix(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		rm, err := NewRotationMatrix([]float64{0, -1, 0, 1, 0, 0, 0, 0, 1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, RotationAlmostEqual(rm, ExpSO3(r3.Vector{Z: math.Pi / 2}), 1e-12), test.ShouldBeTrue)
		test.That(t, rm.Row(0), test.ShouldResemble, r3.Vector{X: 0, Y: -1, Z: 0})
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := NewRotationMatrix([]float64{1, 0, 0})
		test.That(t, errors.Is(err, ErrInvalidRotation), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "expected 9 values")
	})

	t.Run("reflection", func(t *testing.T) {
		_, err := NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, -1})
		test.That(t, errors.Is(err, ErrInvalidRotation), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "determinant")
		test.That(t, err.Error(), test.ShouldNotContainSubstring, "orthonormal")
	})

	t.Run("scaled", func(t *testing.T) {
		_, err := NewRotationMatrix([]float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
		test.That(t, errors.Is(err, ErrInvalidRotation), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "orthonormal")
		test.That(t, err.Error(), test.ShouldContainSubstring, "determinant")
	})

	t.Run("nan", func(t *testing.T) {
		_, err := NewRotationMatrix([]float64{math.NaN(), 0, 0, 0, 1, 0, 0, 0, 1})
		test.That(t, errors.Is(err, ErrInvalidRotation), test.ShouldBeTrue)
	})

	t.Run("from mat3", func(t *testing.T) {
		rm := ExpSO3(r3.Vector{X: 0.3})
		got, err := NewRotationMatrixFromMat3(rm.Mat3())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldResemble, rm)
		_, err = NewRotationMatrixFromMat3(rm.Mat3().Mul(1.1))
		test.That(t, errors.Is(err, ErrInvalidRotation), test.ShouldBeTrue)
	})
}

func TestHatVee(t *testing.T) {
	v := r3.Vector{X: 0.25, Y: -0.5, Z: 1.25}
	test.That(t, Vee(Hat(v)), test.ShouldResemble, v)

	u := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, R3VectorAlmostEqual(mulVec(Hat(v), u), v.Cross(u), 1e-15), test.ShouldBeTrue)
}
