// Package utils holds small helpers shared by the command line tools.
package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// SampleFunc produces one measurement. It is run by Sample.
type SampleFunc func(ctx context.Context) (float64, error)

// errorSink collects errors from concurrent workers. Once one worker has failed, cancellations
// reported by the others are dropped.
type errorSink struct {
	mu  sync.Mutex
	err error
}

func (s *errorSink) store(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil || !errors.Is(err, context.Canceled) {
		s.err = multierr.Combine(s.err, err)
	}
}

// Sample runs every function concurrently and returns the elapsed time and the measurements in
// the order of fs. The first failure cancels the context handed to the others; all failures,
// including recovered panics, are combined into the returned error.
func Sample(ctx context.Context, fs []SampleFunc) (time.Duration, []float64, error) {
	start := time.Now()
	group, ctx := errgroup.WithContext(ctx)
	sink := &errorSink{}
	results := make([]float64, len(fs))

	for i, f := range fs {
		i, f := i, f
		group.Go(func() (err error) {
			defer func() {
				if thePanic := recover(); thePanic != nil {
					err = fmt.Errorf("got panic sampling in parallel: %v", thePanic)
				}
				if err != nil {
					sink.store(err)
				}
			}()
			results[i], err = f(ctx)
			return err
		})
	}

	//nolint:errcheck // every error is already in the sink
	group.Wait()
	return time.Since(start), results, sink.err
}

// Repeat returns n copies of f, ready to hand to Sample.
func Repeat(f SampleFunc, n int) []SampleFunc {
	fs := make([]SampleFunc, n)
	for i := range fs {
		fs[i] = f
	}
	return fs
}
