package luabind

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/liemotion/cmtm"
	"go.viam.com/liemotion/spatialmath"
)

const (
	so3TypeName  = "liemotion.SO3"
	se3TypeName  = "liemotion.SE3"
	cmtmTypeName = "liemotion.CMTM"
)

// checkNumbers reads an array of exactly n numbers at index.
func checkNumbers(state *lua.State, index, n int) []float64 {
	index = state.AbsIndex(index)
	lua.CheckType(state, index, lua.TypeTable)
	if got := state.RawLength(index); got != n {
		lua.ArgumentError(state, index, fmt.Sprintf("expected %d numbers, got %d", n, got))
		return nil
	}
	out := make([]float64, n)
	for i := 1; i <= n; i++ {
		state.RawGetInt(index, i)
		value, ok := state.ToNumber(-1)
		state.Pop(1)
		if !ok {
			lua.ArgumentError(state, index, fmt.Sprintf("element %d is not a number", i))
			return nil
		}
		out[i-1] = value
	}
	return out
}

// checkAnyNumbers reads an array of numbers of any length at index.
func checkAnyNumbers(state *lua.State, index int) []float64 {
	lua.CheckType(state, index, lua.TypeTable)
	return checkNumbers(state, index, state.RawLength(state.AbsIndex(index)))
}

func checkVector(state *lua.State, index int) r3.Vector {
	v := checkNumbers(state, index, 3)
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// quatFromSlice reads (w, x, y, z).
func quatFromSlice(q []float64) quat.Number {
	return quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
}

func checkTwist(state *lua.State, index int) spatialmath.Twist {
	return spatialmath.TwistFromSlice(checkNumbers(state, index, 6))
}

// checkRows reads a rows x cols matrix given as an array of row arrays and returns it row-major.
func checkRows(state *lua.State, index, rows, cols int) []float64 {
	index = state.AbsIndex(index)
	lua.CheckType(state, index, lua.TypeTable)
	if got := state.RawLength(index); got != rows {
		lua.ArgumentError(state, index, fmt.Sprintf("expected %d rows, got %d", rows, got))
		return nil
	}
	out := make([]float64, 0, rows*cols)
	for i := 1; i <= rows; i++ {
		state.RawGetInt(index, i)
		out = append(out, checkNumbers(state, -1, cols)...)
		state.Pop(1)
	}
	return out
}

func pushNumbers(state *lua.State, values []float64) {
	state.CreateTable(len(values), 0)
	for i, v := range values {
		state.PushNumber(v)
		state.RawSetInt(-2, i+1)
	}
}

func pushVector(state *lua.State, v r3.Vector) {
	pushNumbers(state, []float64{v.X, v.Y, v.Z})
}

// pushMatrix pushes m as an array of row arrays.
func pushMatrix(state *lua.State, m mat.Matrix) {
	rows, cols := m.Dims()
	state.CreateTable(rows, 0)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, m)
		pushNumbers(state, row)
		state.RawSetInt(-2, i+1)
	}
}

func pushRotation(state *lua.State, rm spatialmath.RotationMatrix) int {
	state.PushUserData(rm)
	lua.SetMetaTableNamed(state, so3TypeName)
	return 1
}

func pushTransform(state *lua.State, t spatialmath.Transform) int {
	state.PushUserData(t)
	lua.SetMetaTableNamed(state, se3TypeName)
	return 1
}

func pushCMTM(state *lua.State, c *cmtm.CMTM) int {
	state.PushUserData(c)
	lua.SetMetaTableNamed(state, cmtmTypeName)
	return 1
}

func checkRotation(state *lua.State, index int) spatialmath.RotationMatrix {
	ud := lua.CheckUserData(state, index, so3TypeName)
	if rm, ok := ud.(spatialmath.RotationMatrix); ok {
		return rm
	}
	lua.ArgumentError(state, index, "SO3 expected")
	return spatialmath.RotationMatrix{}
}

func checkTransform(state *lua.State, index int) spatialmath.Transform {
	ud := lua.CheckUserData(state, index, se3TypeName)
	if t, ok := ud.(spatialmath.Transform); ok {
		return t
	}
	lua.ArgumentError(state, index, "SE3 expected")
	return spatialmath.Transform{}
}

func checkCMTM(state *lua.State, index int) *cmtm.CMTM {
	ud := lua.CheckUserData(state, index, cmtmTypeName)
	if c, ok := ud.(*cmtm.CMTM); ok && c != nil {
		return c
	}
	lua.ArgumentError(state, index, "CMTM expected")
	return nil
}
