// Package luabind exposes the rotation, transform and CMTM algebra to Lua scripts. It only converts
// values between Lua and Go; every computation is done by the spatialmath and cmtm packages.
//
// A script sees three global tables, SO3, SE3 and CMTM, whose constructors return userdata values
// with methods, e.g.
//
//	local r = SO3.exp({0.1, 0.2, 0.3})
//	local w = r:log()
//	local t = SE3.new(r, {1, 2, 3}) * SE3.exp({0.1, 0, 0, 0, 0, 1})
//	local c = CMTM.new(t, {0, 0, 1, 1, 0, 0})
//
// Vectors are arrays of numbers and matrices are arrays of row arrays. Errors from the Go side, such
// as composing CMTMs of different orders, are raised as Lua errors.
package luabind

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/liemotion/cmtm"
	"go.viam.com/liemotion/logging"
	"go.viam.com/liemotion/spatialmath"
)

type binder struct {
	logger logging.Logger
}

// Open registers the SO3, SE3, CMTM and logger globals in state. Scripts log through logger.
func Open(state *lua.State, logger logging.Logger) {
	b := &binder{logger: logger}

	registerType(state, so3TypeName, []lua.RegistryFunction{
		{Name: "compose", Function: so3Compose},
		{Name: "inverse", Function: so3Inverse},
		{Name: "apply", Function: so3Apply},
		{Name: "log", Function: so3Log},
		{Name: "matrix", Function: so3Matrix},
		{Name: "quaternion", Function: so3Quaternion},
		{Name: "euler", Function: so3Euler},
	}, []lua.RegistryFunction{
		{Name: "__mul", Function: so3Mul},
		{Name: "__tostring", Function: so3String},
	})
	registerType(state, se3TypeName, []lua.RegistryFunction{
		{Name: "compose", Function: se3Compose},
		{Name: "inverse", Function: se3Inverse},
		{Name: "apply", Function: se3Apply},
		{Name: "log", Function: se3Log},
		{Name: "matrix", Function: se3Matrix},
		{Name: "adjoint", Function: se3Adjoint},
		{Name: "rotation", Function: se3Rotation},
		{Name: "translation", Function: se3Translation},
	}, []lua.RegistryFunction{
		{Name: "__mul", Function: se3Mul},
		{Name: "__tostring", Function: se3String},
	})
	registerType(state, cmtmTypeName, []lua.RegistryFunction{
		{Name: "compose", Function: b.cmtmCompose},
		{Name: "inverse", Function: cmtmInverse},
		{Name: "order", Function: cmtmOrder},
		{Name: "dim", Function: cmtmDim},
		{Name: "transform", Function: cmtmTransform},
		{Name: "rotation", Function: cmtmRotation},
		{Name: "derivative", Function: b.cmtmDerivative},
		{Name: "matrix", Function: cmtmMatrix},
		{Name: "apply", Function: b.cmtmApply},
		{Name: "apply_twist", Function: cmtmApplyTwist},
	}, []lua.RegistryFunction{
		{Name: "__mul", Function: b.cmtmCompose},
		{Name: "__tostring", Function: cmtmString},
	})

	registerGlobal(state, "SO3", []lua.RegistryFunction{
		{Name: "identity", Function: so3Identity},
		{Name: "exp", Function: so3Exp},
		{Name: "from_axis_angle", Function: so3FromAxisAngle},
		{Name: "from_quaternion", Function: so3FromQuaternion},
		{Name: "from_euler", Function: so3FromEuler},
		{Name: "from_matrix", Function: b.so3FromMatrix},
	})
	registerGlobal(state, "SE3", []lua.RegistryFunction{
		{Name: "identity", Function: se3Identity},
		{Name: "exp", Function: se3Exp},
		{Name: "new", Function: se3New},
		{Name: "from_matrix", Function: b.se3FromMatrix},
	})
	registerGlobal(state, "CMTM", []lua.RegistryFunction{
		{Name: "new", Function: cmtmNew},
		{Name: "rotational", Function: cmtmRotational},
		{Name: "identity", Function: cmtmIdentity},
		{Name: "rotational_identity", Function: cmtmRotationalIdentity},
	})
	registerGlobal(state, "logger", []lua.RegistryFunction{
		{Name: "debug", Function: b.logDebug},
		{Name: "info", Function: b.logInfo},
		{Name: "warn", Function: b.logWarn},
	})
}

// Run executes script in a fresh state with the standard libraries and the bindings opened. The state
// is returned so callers can read the globals the script left behind.
func Run(logger logging.Logger, script string) (*lua.State, error) {
	state := newState(logger)
	if err := lua.DoString(state, script); err != nil {
		return nil, errors.Wrap(err, "run lua")
	}
	return state, nil
}

// RunFile is like Run but loads the script from path.
func RunFile(logger logging.Logger, path string) (*lua.State, error) {
	state := newState(logger)
	if err := lua.DoFile(state, path); err != nil {
		return nil, errors.Wrapf(err, "run lua file %q", path)
	}
	return state, nil
}

func newState(logger logging.Logger) *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	Open(state, logger)
	return state
}

func registerType(state *lua.State, name string, methods, metamethods []lua.RegistryFunction) {
	lua.NewMetaTable(state, name)
	state.NewTable()
	lua.SetFunctions(state, methods, 0)
	state.SetField(-2, "__index")
	lua.SetFunctions(state, metamethods, 0)
	state.Pop(1)
}

func registerGlobal(state *lua.State, name string, functions []lua.RegistryFunction) {
	state.NewTable()
	lua.SetFunctions(state, functions, 0)
	state.SetGlobal(name)
}

// raise turns a Go error into a Lua error. It does not return.
func (b *binder) raise(state *lua.State, err error) int {
	b.logger.Debugw("lua call failed", "error", err)
	lua.Errorf(state, "%s", err.Error())
	return 0
}

func (b *binder) logDebug(state *lua.State) int {
	b.logger.Debug(lua.CheckString(state, 1))
	return 0
}

func (b *binder) logInfo(state *lua.State) int {
	b.logger.Info(lua.CheckString(state, 1))
	return 0
}

func (b *binder) logWarn(state *lua.State) int {
	b.logger.Warn(lua.CheckString(state, 1))
	return 0
}

// SO3

func so3Identity(state *lua.State) int {
	return pushRotation(state, spatialmath.IdentityRotation())
}

func so3Exp(state *lua.State) int {
	return pushRotation(state, spatialmath.ExpSO3(checkVector(state, 1)))
}

func so3FromAxisAngle(state *lua.State) int {
	axis := checkVector(state, 1)
	angle := lua.CheckNumber(state, 2)
	return pushRotation(state, spatialmath.NewRotationFromAxisAngle(axis, angle))
}

func so3FromQuaternion(state *lua.State) int {
	q := checkNumbers(state, 1, 4)
	return pushRotation(state, spatialmath.QuatToRotationMatrix(quatFromSlice(q)))
}

func so3FromEuler(state *lua.State) int {
	roll := lua.CheckNumber(state, 1)
	pitch := lua.CheckNumber(state, 2)
	yaw := lua.CheckNumber(state, 3)
	return pushRotation(state, spatialmath.NewRotationFromEulerAngles(roll, pitch, yaw))
}

func (b *binder) so3FromMatrix(state *lua.State) int {
	rm, err := spatialmath.NewRotationMatrix(checkRows(state, 1, 3, 3))
	if err != nil {
		return b.raise(state, err)
	}
	return pushRotation(state, rm)
}

func so3Compose(state *lua.State) int {
	return pushRotation(state, checkRotation(state, 1).Compose(checkRotation(state, 2)))
}

func so3Inverse(state *lua.State) int {
	return pushRotation(state, checkRotation(state, 1).Inverse())
}

func so3Apply(state *lua.State) int {
	pushVector(state, checkRotation(state, 1).Apply(checkVector(state, 2)))
	return 1
}

func so3Log(state *lua.State) int {
	pushVector(state, checkRotation(state, 1).Log())
	return 1
}

func so3Matrix(state *lua.State) int {
	pushMatrix(state, checkRotation(state, 1).Dense())
	return 1
}

func so3Quaternion(state *lua.State) int {
	q := checkRotation(state, 1).Quaternion()
	pushNumbers(state, []float64{q.Real, q.Imag, q.Jmag, q.Kmag})
	return 1
}

func so3Euler(state *lua.State) int {
	ea := checkRotation(state, 1).EulerAngles()
	state.PushNumber(ea.Roll)
	state.PushNumber(ea.Pitch)
	state.PushNumber(ea.Yaw)
	return 3
}

// so3Mul composes with another SO3, or rotates a vector.
func so3Mul(state *lua.State) int {
	if lua.TestUserData(state, 2, so3TypeName) != nil {
		return so3Compose(state)
	}
	return so3Apply(state)
}

func so3String(state *lua.State) int {
	w := checkRotation(state, 1).Log()
	state.PushString(fmt.Sprintf("SO3(%g, %g, %g)", w.X, w.Y, w.Z))
	return 1
}

// SE3

func se3Identity(state *lua.State) int {
	return pushTransform(state, spatialmath.IdentityTransform())
}

func se3Exp(state *lua.State) int {
	return pushTransform(state, spatialmath.ExpSE3(checkTwist(state, 1)))
}

func se3New(state *lua.State) int {
	rm := checkRotation(state, 1)
	p := checkVector(state, 2)
	return pushTransform(state, spatialmath.NewTransform(rm, p))
}

func (b *binder) se3FromMatrix(state *lua.State) int {
	values := checkRows(state, 1, 4, 4)
	var m mgl64.Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m.Set(i, j, values[i*4+j])
		}
	}
	t, err := spatialmath.NewTransformFromMatrix(m)
	if err != nil {
		return b.raise(state, err)
	}
	return pushTransform(state, t)
}

func se3Compose(state *lua.State) int {
	return pushTransform(state, checkTransform(state, 1).Compose(checkTransform(state, 2)))
}

func se3Inverse(state *lua.State) int {
	return pushTransform(state, checkTransform(state, 1).Inverse())
}

func se3Apply(state *lua.State) int {
	pushVector(state, checkTransform(state, 1).Apply(checkVector(state, 2)))
	return 1
}

func se3Log(state *lua.State) int {
	xi := checkTransform(state, 1).Log()
	pushNumbers(state, xi[:])
	return 1
}

func se3Matrix(state *lua.State) int {
	m := checkTransform(state, 1).Matrix()
	state.CreateTable(4, 0)
	for i := 0; i < 4; i++ {
		row := m.Row(i)
		pushNumbers(state, row[:])
		state.RawSetInt(-2, i+1)
	}
	return 1
}

func se3Adjoint(state *lua.State) int {
	pushMatrix(state, checkTransform(state, 1).Adjoint())
	return 1
}

func se3Rotation(state *lua.State) int {
	return pushRotation(state, checkTransform(state, 1).Rotation())
}

func se3Translation(state *lua.State) int {
	pushVector(state, checkTransform(state, 1).Translation())
	return 1
}

// se3Mul composes with another SE3, or transforms a point.
func se3Mul(state *lua.State) int {
	if lua.TestUserData(state, 2, se3TypeName) != nil {
		return se3Compose(state)
	}
	return se3Apply(state)
}

func se3String(state *lua.State) int {
	xi := checkTransform(state, 1).Log()
	state.PushString(fmt.Sprintf("SE3(%g, %g, %g, %g, %g, %g)", xi[0], xi[1], xi[2], xi[3], xi[4], xi[5]))
	return 1
}

// CMTM

// cmtmNew builds a spatial CMTM from an SE3 followed by any number of derivative twists.
func cmtmNew(state *lua.State) int {
	t := checkTransform(state, 1)
	derivs := lo.Map(lo.Range(state.Top()-1), func(i, _ int) spatialmath.Twist {
		return checkTwist(state, i+2)
	})
	return pushCMTM(state, cmtm.New(t, derivs...))
}

// cmtmRotational builds a rotational CMTM from an SO3 followed by angular velocity derivatives.
func cmtmRotational(state *lua.State) int {
	rm := checkRotation(state, 1)
	derivs := lo.Map(lo.Range(state.Top()-1), func(i, _ int) r3.Vector {
		return checkVector(state, i+2)
	})
	return pushCMTM(state, cmtm.NewRotational(rm, derivs...))
}

func checkOrder(state *lua.State, index int) int {
	order := lua.CheckInteger(state, index)
	if order < 0 {
		lua.ArgumentError(state, index, "order must not be negative")
	}
	return order
}

func cmtmIdentity(state *lua.State) int {
	return pushCMTM(state, cmtm.Identity(checkOrder(state, 1)))
}

func cmtmRotationalIdentity(state *lua.State) int {
	return pushCMTM(state, cmtm.RotationalIdentity(checkOrder(state, 1)))
}

func (b *binder) cmtmCompose(state *lua.State) int {
	c, err := checkCMTM(state, 1).Compose(checkCMTM(state, 2))
	if err != nil {
		return b.raise(state, err)
	}
	return pushCMTM(state, c)
}

func cmtmInverse(state *lua.State) int {
	return pushCMTM(state, checkCMTM(state, 1).Inverse())
}

func cmtmOrder(state *lua.State) int {
	state.PushInteger(checkCMTM(state, 1).Order())
	return 1
}

func cmtmDim(state *lua.State) int {
	state.PushInteger(checkCMTM(state, 1).Dim())
	return 1
}

func cmtmTransform(state *lua.State) int {
	return pushTransform(state, checkCMTM(state, 1).Transform())
}

func cmtmRotation(state *lua.State) int {
	return pushRotation(state, checkCMTM(state, 1).Rotation())
}

func (b *binder) cmtmDerivative(state *lua.State) int {
	c := checkCMTM(state, 1)
	tw, err := c.Derivative(lua.CheckInteger(state, 2))
	if err != nil {
		return b.raise(state, err)
	}
	pushNumbers(state, tw[:c.Dim()])
	return 1
}

func cmtmMatrix(state *lua.State) int {
	pushMatrix(state, checkCMTM(state, 1).Matrix())
	return 1
}

func (b *binder) cmtmApply(state *lua.State) int {
	out, err := checkCMTM(state, 1).Apply(checkAnyNumbers(state, 2))
	if err != nil {
		return b.raise(state, err)
	}
	pushNumbers(state, out)
	return 1
}

func cmtmApplyTwist(state *lua.State) int {
	tw := checkCMTM(state, 1).ApplyTwist(checkTwist(state, 2))
	pushNumbers(state, tw[:])
	return 1
}

func cmtmString(state *lua.State) int {
	state.PushString(checkCMTM(state, 1).String())
	return 1
}
