package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestSample(t *testing.T) {
	wait100ms := func(ctx context.Context) (float64, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(100 * time.Millisecond):
			return 1, nil
		}
	}

	elapsed, results, err := Sample(context.Background(), Repeat(wait100ms, 2))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, results, test.ShouldResemble, []float64{1, 1})
	test.That(t, elapsed, test.ShouldBeLessThan, 190*time.Millisecond)
	test.That(t, elapsed, test.ShouldBeGreaterThan, 90*time.Millisecond)

	errBad := errors.New("bad")
	errFunc := func(ctx context.Context) (float64, error) {
		return 0, errBad
	}

	elapsed, _, err = Sample(context.Background(), []SampleFunc{wait100ms, wait100ms, errFunc})
	test.That(t, err, test.ShouldWrap, errBad)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeFalse)
	test.That(t, elapsed, test.ShouldBeLessThan, 50*time.Millisecond)

	panicFunc := func(ctx context.Context) (float64, error) {
		panic(1)
	}

	_, _, err = Sample(context.Background(), []SampleFunc{panicFunc})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "got panic")
}

func TestRepeat(t *testing.T) {
	test.That(t, Repeat(nil, 3), test.ShouldHaveLength, 3)
	test.That(t, Repeat(nil, 0), test.ShouldBeEmpty)
}

func TestAngles(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, 3.141592653589793)
	test.That(t, RadToDeg(DegToRad(37.5)), test.ShouldAlmostEqual, 37.5)
}
