package cli

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/liemotion/cmtm"
	"go.viam.com/liemotion/spatialmath"
	"go.viam.com/liemotion/utils"
)

type benchCase struct {
	name string
	run  func(iterations int) error
}

type benchResult struct {
	name   string
	mean   float64
	median float64
	p99    float64
	count  int
}

var errNonFinite = errors.New("benchmark produced a non-finite value")

func finite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errNonFinite
		}
	}
	return nil
}

// benchCases returns the measured operations. Each case folds its results into an accumulator
// so the work cannot be skipped.
func benchCases() []benchCase {
	rotation := spatialmath.NewRotationFromAxisAngle(r3.Vector{X: 1, Y: 2, Z: 3}, 0.4)
	transform := spatialmath.NewTransform(rotation, r3.Vector{X: 0.25, Y: -0.5, Z: 1})
	velocity := spatialmath.Twist{0.1, 0.2, 0.3, 1, 2, 3}
	adjoint := cmtm.New(transform)
	second := cmtm.New(transform, velocity, spatialmath.Twist{0, 0, 0.5, 0, 0, 0})

	return []benchCase{
		{
			name: "SO3 apply",
			run: func(n int) error {
				p := r3.Vector{X: 1}
				for i := 0; i < n; i++ {
					p = rotation.Apply(p)
				}
				return finite(p.X, p.Y, p.Z)
			},
		},
		{
			name: "SE3 apply",
			run: func(n int) error {
				p := r3.Vector{X: 1}
				for i := 0; i < n; i++ {
					p = transform.Apply(p).Mul(0.5)
				}
				return finite(p.X, p.Y, p.Z)
			},
		},
		{
			name: "CMTM apply twist",
			run: func(n int) error {
				acc := 0.
				for i := 0; i < n; i++ {
					acc += adjoint.ApplyTwist(velocity)[5]
				}
				return finite(acc)
			},
		},
		{
			name: "CMTM compose",
			run: func(n int) error {
				acc := 0.
				for i := 0; i < n; i++ {
					c, err := second.Compose(second)
					if err != nil {
						return err
					}
					acc += c.Transform().Translation().X
				}
				return finite(acc)
			},
		},
	}
}

// runBench samples every case rounds times on each of workers concurrent goroutines and reports
// nanoseconds per operation.
func runBench(ctx context.Context, cases []benchCase, iterations, rounds, workers int) ([]benchResult, error) {
	if iterations < 1 || rounds < 1 || workers < 1 {
		return nil, errors.Errorf("iterations, rounds and workers must be positive, got %d, %d and %d",
			iterations, rounds, workers)
	}

	results := make([]benchResult, 0, len(cases))
	for _, bc := range cases {
		sample := func(ctx context.Context) (float64, error) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			start := time.Now()
			if err := bc.run(iterations); err != nil {
				return 0, errors.Wrap(err, bc.name)
			}
			return float64(time.Since(start).Nanoseconds()) / float64(iterations), nil
		}

		var samples stats.Float64Data
		for r := 0; r < rounds; r++ {
			_, values, err := utils.Sample(ctx, utils.Repeat(sample, workers))
			if err != nil {
				return nil, err
			}
			samples = append(samples, values...)
		}

		result := benchResult{name: bc.name, count: samples.Len()}
		var err error
		if result.mean, err = stats.Mean(samples); err != nil {
			return nil, err
		}
		if result.median, err = stats.Median(samples); err != nil {
			return nil, err
		}
		if result.p99, err = stats.Percentile(samples, 99); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func printBench(w io.Writer, results []benchResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"operation", "mean ns/op", "median ns/op", "p99 ns/op", "samples"})
	for _, r := range results {
		t.AppendRow(table.Row{r.name, formatNS(r.mean), formatNS(r.median), formatNS(r.p99), r.count})
	}
	t.Render()
}

func formatNS(v float64) string {
	return formatNumber(math.Round(v*10) / 10)
}

// BenchAction is the corresponding action for 'bench'.
func BenchAction(c *cli.Context) error {
	iterations, rounds, workers := c.Int(iterationsFlag), c.Int(roundsFlag), c.Int(workersFlag)
	logger := loggerFrom(c)
	logger.Infow("benchmarking", "iterations", iterations, "rounds", rounds, "workers", workers)

	results, err := runBench(c.Context, benchCases(), iterations, rounds, workers)
	if err != nil {
		return err
	}
	printBench(c.App.Writer, results)
	return nil
}
