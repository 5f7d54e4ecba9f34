package cli

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/liemotion/cmtm"
	"go.viam.com/liemotion/luabind"
	"go.viam.com/liemotion/spatialmath"
	"go.viam.com/liemotion/utils"
)

// ExpAction is the corresponding action for 'exp'.
func ExpAction(c *cli.Context) error {
	values, err := parseNumbers(c.Args().Slice())
	if err != nil {
		return err
	}
	if c.Bool(degreesFlag) {
		for i := 0; i < 3 && i < len(values); i++ {
			values[i] = utils.DegToRad(values[i])
		}
	}
	loggerFrom(c).Debugw("exp", "values", values)

	switch len(values) {
	case 3:
		printMatrix(c.App.Writer, spatialmath.ExpSO3(vectorFromSlice(values)).Dense())
	case 6:
		printMatrix(c.App.Writer, mat4ToDense(spatialmath.ExpSE3(spatialmath.TwistFromSlice(values)).Matrix()))
	default:
		return errors.Errorf("exp expects 3 numbers (rotation vector) or 6 (twist), got %d", len(values))
	}
	return nil
}

// LogAction is the corresponding action for 'log'.
func LogAction(c *cli.Context) error {
	values, err := parseNumbers(c.Args().Slice())
	if err != nil {
		return err
	}

	var out []float64
	switch len(values) {
	case 9:
		rm, err := spatialmath.NewRotationMatrix(values)
		if err != nil {
			return err
		}
		w := rm.Log()
		out = []float64{w.X, w.Y, w.Z}
	case 16:
		var m mgl64.Mat4
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				m.Set(i, j, values[i*4+j])
			}
		}
		tf, err := spatialmath.NewTransformFromMatrix(m)
		if err != nil {
			return err
		}
		out = tf.Log().Slice()
	default:
		return errors.Errorf("log expects 9 numbers (rotation) or 16 (homogeneous transform), got %d", len(values))
	}

	if c.Bool(degreesFlag) {
		for i := 0; i < 3; i++ {
			out[i] = utils.RadToDeg(out[i])
		}
	}
	printVector(c.App.Writer, "log", out)
	return nil
}

// ComposeAction is the corresponding action for 'compose'.
func ComposeAction(c *cli.Context) error {
	values, err := parseNumbers(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(values) < 12 || len(values)%6 != 0 {
		return errors.Errorf("compose expects at least two twists of 6 numbers, got %d numbers", len(values))
	}

	result := lo.Reduce(lo.Chunk(values, 6), func(acc spatialmath.Transform, xi []float64, _ int) spatialmath.Transform {
		return acc.Compose(spatialmath.ExpSE3(spatialmath.TwistFromSlice(xi)))
	}, spatialmath.IdentityTransform())
	loggerFrom(c).Debugw("composed", "twists", len(values)/6)

	printVector(c.App.Writer, "twist", result.Log().Slice())
	printMatrix(c.App.Writer, mat4ToDense(result.Matrix()))
	return nil
}

// CMTMAction is the corresponding action for 'cmtm'.
func CMTMAction(c *cli.Context) error {
	rotational := c.Bool(rotationalFlag)
	values, err := parseNumbers(c.Args().Slice())
	if err != nil {
		return err
	}
	m, err := buildCMTM(values, rotational)
	if err != nil {
		return err
	}

	if with := c.String(withFlag); with != "" {
		otherValues, err := parseNumbers([]string{with})
		if err != nil {
			return err
		}
		other, err := buildCMTM(otherValues, rotational)
		if err != nil {
			return errors.Wrapf(err, "--%s", withFlag)
		}
		if m, err = m.Compose(other); err != nil {
			return err
		}
	}
	if c.Bool(inverseFlag) {
		m = m.Inverse()
	}
	loggerFrom(c).Debugw("built cmtm", "order", m.Order(), "dim", m.Dim())

	printf(c.App.Writer, "%s", m)
	for k := 1; k <= m.Order(); k++ {
		d, err := m.Derivative(k)
		if err != nil {
			return err
		}
		printVector(c.App.Writer, "derivative "+strconv.Itoa(k), d[:m.Dim()])
	}
	printMatrix(c.App.Writer, m.Matrix())
	return nil
}

// buildCMTM reads a base motion followed by derivatives. The base is exponentiated.
func buildCMTM(values []float64, rotational bool) (*cmtm.CMTM, error) {
	size := 6
	if rotational {
		size = 3
	}
	if len(values) < size || len(values)%size != 0 {
		return nil, errors.Errorf("cmtm expects groups of %d numbers, got %d numbers", size, len(values))
	}
	groups := lo.Chunk(values, size)

	if rotational {
		derivs := lo.Map(groups[1:], func(g []float64, _ int) r3.Vector {
			return vectorFromSlice(g)
		})
		return cmtm.NewRotational(spatialmath.ExpSO3(vectorFromSlice(groups[0])), derivs...), nil
	}
	derivs := lo.Map(groups[1:], func(g []float64, _ int) spatialmath.Twist {
		return spatialmath.TwistFromSlice(g)
	})
	return cmtm.New(spatialmath.ExpSE3(spatialmath.TwistFromSlice(groups[0])), derivs...), nil
}

// LuaAction is the corresponding action for 'lua'.
func LuaAction(c *cli.Context) error {
	logger := loggerFrom(c)
	if expr := c.String(exprFlag); expr != "" {
		if c.Args().Present() {
			return errors.Errorf("give either a file or --%s, not both", exprFlag)
		}
		_, err := luabind.Run(logger, expr)
		return err
	}
	if c.Args().Len() != 1 {
		return errors.New("lua expects exactly one script file")
	}
	_, err := luabind.RunFile(logger, c.Args().First())
	return err
}

func vectorFromSlice(v []float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func mat4ToDense(m mgl64.Mat4) *mat.Dense {
	out := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}
