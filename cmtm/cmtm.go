// Package cmtm implements coupled motion transform matrices (CMTMs): a rigid transform together with
// the time derivatives of its body twist, assembled into one block matrix that maps stacked twists and
// their derivatives between frames.
//
// For a base element with matrix M₀ (the 6x6 adjoint of a transform, or the 3x3 matrix of a rotation)
// and derivatives d₁..d_N, the blocks are
//
//	M_p = (1/p) · Σ_{i=0}^{p-1} M_{p-1-i} · ad(d_{i+1} / i!),   p ≥ 1
//
// and the full matrix is lower-triangular block Toeplitz with block (i, j) = M_{i-j}. Block M_p is the
// p-th Taylor coefficient of X(t) with Ẋ = X·ad(ξ(t)), d_k being the (k-1)-th derivative of ξ, so
// products of CMTMs are again CMTMs.
package cmtm

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/liemotion/spatialmath"
)

const (
	spatialDim    = 6
	rotationalDim = 3
)

// CMTM is an immutable coupled motion transform matrix of fixed order. The spatial kind is built on a
// Transform with 6x6 blocks; the rotational kind is built on a rotation with 3x3 blocks.
type CMTM struct {
	dim    int
	base   spatialmath.Transform
	derivs [][]float64
	// blocks[p] is M_p; shared between values, never written after construction
	blocks []*mat.Dense
}

// New builds a spatial CMTM from a transform and its body twist derivatives: derivs[0] is the
// velocity, derivs[1] the acceleration and so on. With no derivatives the matrix is t.Adjoint().
func New(t spatialmath.Transform, derivs ...spatialmath.Twist) *CMTM {
	return build(spatialDim, t, lo.Map(derivs, func(d spatialmath.Twist, _ int) []float64 {
		return d.Slice()
	}))
}

// NewRotational builds a rotational CMTM from a rotation and its body angular velocity derivatives.
func NewRotational(r spatialmath.RotationMatrix, derivs ...r3.Vector) *CMTM {
	return build(rotationalDim, spatialmath.NewTransform(r, r3.Vector{}), lo.Map(derivs, func(d r3.Vector, _ int) []float64 {
		return []float64{d.X, d.Y, d.Z}
	}))
}

// Identity returns the spatial CMTM of the given order with identity base and zero derivatives. It
// panics if order is negative.
func Identity(order int) *CMTM {
	checkOrder(order)
	return New(spatialmath.IdentityTransform(), make([]spatialmath.Twist, order)...)
}

// RotationalIdentity returns the rotational CMTM of the given order with identity base and zero
// derivatives. It panics if order is negative.
func RotationalIdentity(order int) *CMTM {
	checkOrder(order)
	return NewRotational(spatialmath.IdentityRotation(), make([]r3.Vector, order)...)
}

func checkOrder(order int) {
	if order < 0 {
		panic(errors.Errorf("cmtm order must not be negative, got %d", order))
	}
}

func build(dim int, base spatialmath.Transform, derivs [][]float64) *CMTM {
	c := &CMTM{dim: dim, base: base, derivs: derivs}
	scaled := make([]*mat.Dense, len(derivs))
	for i, d := range derivs {
		h := c.ad(d)
		h.Scale(1/factorial(i), h)
		scaled[i] = h
	}

	c.blocks = make([]*mat.Dense, len(derivs)+1)
	c.blocks[0] = c.baseBlock()
	var term mat.Dense
	for p := 1; p <= len(derivs); p++ {
		m := mat.NewDense(dim, dim, nil)
		for i := 0; i < p; i++ {
			term.Mul(c.blocks[p-1-i], scaled[i])
			m.Add(m, &term)
		}
		m.Scale(1/float64(p), m)
		c.blocks[p] = m
	}
	return c
}

// fromBlocks recovers the derivatives that generate blocks by inverting the block recursion, and
// rebuilds a canonical CMTM from them. blocks[0] must equal the base block of base.
func fromBlocks(dim int, base spatialmath.Transform, blocks []*mat.Dense) *CMTM {
	c := &CMTM{dim: dim, base: base}
	inv := c.baseInverseBlock()
	n := len(blocks) - 1

	derivs := make([][]float64, n)
	scaled := make([]*mat.Dense, n)
	var term mat.Dense
	for k := 0; k < n; k++ {
		// (k+1)·M_{k+1} - Σ_{i<k} M_{k-i}·ad(d_{i+1}/i!) = M₀·ad(d_{k+1}/k!)
		rest := mat.NewDense(dim, dim, nil)
		rest.Scale(float64(k+1), blocks[k+1])
		for i := 0; i < k; i++ {
			term.Mul(blocks[k-i], scaled[i])
			rest.Sub(rest, &term)
		}
		h := mat.NewDense(dim, dim, nil)
		h.Mul(inv, rest)
		scaled[k] = h

		d := c.vee(h)
		f := factorial(k)
		for i := range d {
			d[i] *= f
		}
		derivs[k] = d
	}
	return build(dim, base, derivs)
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func (c *CMTM) baseBlock() *mat.Dense {
	if c.dim == rotationalDim {
		return c.base.Rotation().Dense()
	}
	return c.base.Adjoint()
}

func (c *CMTM) baseInverseBlock() *mat.Dense {
	if c.dim == rotationalDim {
		return c.base.Rotation().Inverse().Dense()
	}
	return c.base.Inverse().Adjoint()
}

// ad returns the small adjoint of a derivative vector: ω̂ for the rotational kind and
// [[ω̂, 0], [v̂, ω̂]] for the spatial kind.
func (c *CMTM) ad(d []float64) *mat.Dense {
	if c.dim == rotationalDim {
		return spatialmath.Mat3ToDense(spatialmath.Hat(r3.Vector{X: d[0], Y: d[1], Z: d[2]}))
	}
	return spatialmath.TwistFromSlice(d).Ad()
}

// vee inverts ad. Only the blocks that carry ω and v are read.
func (c *CMTM) vee(m *mat.Dense) []float64 {
	w := veeBlock(m, 0, 0)
	if c.dim == rotationalDim {
		return []float64{w.X, w.Y, w.Z}
	}
	v := veeBlock(m, 3, 0)
	return []float64{w.X, w.Y, w.Z, v.X, v.Y, v.Z}
}

func veeBlock(m *mat.Dense, r, c int) r3.Vector {
	return r3.Vector{
		X: 0.5 * (m.At(r+2, c+1) - m.At(r+1, c+2)),
		Y: 0.5 * (m.At(r, c+2) - m.At(r+2, c)),
		Z: 0.5 * (m.At(r+1, c) - m.At(r, c+1)),
	}
}

// Order returns N, the number of derivatives carried. The matrix has N+1 block rows.
func (c *CMTM) Order() int {
	return len(c.derivs)
}

// Dim returns the block size: 6 for spatial CMTMs, 3 for rotational ones.
func (c *CMTM) Dim() int {
	return c.dim
}

// Transform returns the base transform. Rotational CMTMs have zero translation.
func (c *CMTM) Transform() spatialmath.Transform {
	return c.base
}

// Rotation returns the rotation of the base element.
func (c *CMTM) Rotation() spatialmath.RotationMatrix {
	return c.base.Rotation()
}

// Derivative returns derivative k, 1-based: 1 is the velocity. For a rotational CMTM the linear part of
// the returned twist is zero.
func (c *CMTM) Derivative(k int) (spatialmath.Twist, error) {
	if k < 1 || k > c.Order() {
		return spatialmath.Twist{}, newDerivativeOutOfRangeError(k, c.Order())
	}
	return spatialmath.TwistFromSlice(c.derivs[k-1]), nil
}

// AngularDerivative returns the angular part of derivative k, see Derivative.
func (c *CMTM) AngularDerivative(k int) (r3.Vector, error) {
	tw, err := c.Derivative(k)
	if err != nil {
		return r3.Vector{}, err
	}
	return tw.Angular(), nil
}

// Block returns a copy of block (i, j) of the matrix, M_{i-j} below or on the diagonal and zero above.
// It panics if i or j is outside 0..Order().
func (c *CMTM) Block(i, j int) *mat.Dense {
	n := c.Order()
	if i < 0 || i > n || j < 0 || j > n {
		panic(mat.ErrIndexOutOfRange)
	}
	if j > i {
		return mat.NewDense(c.dim, c.dim, nil)
	}
	return mat.DenseCopyOf(c.blocks[i-j])
}

// Matrix assembles the full (dim·(N+1))x(dim·(N+1)) block matrix.
func (c *CMTM) Matrix() *mat.Dense {
	n := c.Order() + 1
	m := mat.NewDense(c.dim*n, c.dim*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sub := m.Slice(i*c.dim, (i+1)*c.dim, j*c.dim, (j+1)*c.dim).(*mat.Dense)
			sub.Copy(c.blocks[i-j])
		}
	}
	return m
}

// Compose returns c·other. Both must have the same order and kind, otherwise ErrDimensionMismatch is
// returned with no result. The blocks of the product are C_k = Σ_{i+j=k} A_i·B_j and its derivatives
// are recovered from them, so the first derivative is Ad(T_other⁻¹)·d₁ + d₁' and so on.
func (c *CMTM) Compose(other *CMTM) (*CMTM, error) {
	if c.dim != other.dim || c.Order() != other.Order() {
		return nil, newDimensionMismatchError(c, other)
	}
	n := c.Order()
	blocks := make([]*mat.Dense, n+1)
	var term mat.Dense
	for k := 0; k <= n; k++ {
		sum := mat.NewDense(c.dim, c.dim, nil)
		for i := 0; i <= k; i++ {
			term.Mul(c.blocks[i], other.blocks[k-i])
			sum.Add(sum, &term)
		}
		blocks[k] = sum
	}
	return fromBlocks(c.dim, c.base.Compose(other.base), blocks), nil
}

// Inverse returns the CMTM whose matrix is the inverse of c's. The base block is inverted in closed
// form and the remaining blocks follow D_k = -D₀·Σ_{i=1}^{k} M_i·D_{k-i}.
func (c *CMTM) Inverse() *CMTM {
	n := c.Order()
	inv := make([]*mat.Dense, n+1)
	inv[0] = c.baseInverseBlock()
	var term mat.Dense
	for k := 1; k <= n; k++ {
		sum := mat.NewDense(c.dim, c.dim, nil)
		for i := 1; i <= k; i++ {
			term.Mul(c.blocks[i], inv[k-i])
			sum.Add(sum, &term)
		}
		dk := mat.NewDense(c.dim, c.dim, nil)
		dk.Mul(inv[0], sum)
		dk.Scale(-1, dk)
		inv[k] = dk
	}
	return fromBlocks(c.dim, c.base.Inverse(), inv)
}

// ApplyTwist maps a twist through the base block only, which is the adjoint of the base transform.
// For a rotational CMTM both parts of the twist are rotated.
func (c *CMTM) ApplyTwist(tw spatialmath.Twist) spatialmath.Twist {
	return c.base.AdjointTwist(tw)
}

// Apply multiplies the full matrix with a stacked vector (x₀, x₁, ..., x_N) of dim·(N+1) values, e.g. a
// twist followed by its derivatives. The input is not modified.
func (c *CMTM) Apply(stack []float64) ([]float64, error) {
	size := c.dim * (c.Order() + 1)
	if len(stack) != size {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%s expects %d stacked values, got %d", c, size, len(stack))
	}
	var out mat.VecDense
	out.MulVec(c.Matrix(), mat.NewVecDense(size, stack))
	return out.RawVector().Data, nil
}

// String describes the kind and order, e.g. "order 2 spatial CMTM".
func (c *CMTM) String() string {
	kind := "spatial"
	if c.dim == rotationalDim {
		kind = "rotational"
	}
	return fmt.Sprintf("order %d %s CMTM", c.Order(), kind)
}

// AlmostEqual reports whether a and b have the same kind and order, and their base elements and
// derivatives agree within tol.
func AlmostEqual(a, b *CMTM, tol float64) bool {
	if a.dim != b.dim || a.Order() != b.Order() {
		return false
	}
	if !spatialmath.TransformAlmostEqual(a.base, b.base, tol) {
		return false
	}
	for k := range a.derivs {
		for i := range a.derivs[k] {
			if !(math.Abs(a.derivs[k][i]-b.derivs[k][i]) < tol) {
				return false
			}
		}
	}
	return true
}
