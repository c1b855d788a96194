package tjdecode

import (
	"context"
	"fmt"
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelConfig controls the batch worker pool
type ParallelConfig struct {
	// MaxWorkers is the maximum number of files decoded at once.
	// If 0, defaults to runtime.NumCPU()
	MaxWorkers int
}

// Validate checks if the parallel configuration is valid
func (p *ParallelConfig) Validate() error {
	if err := ValidateWorkers(p.MaxWorkers); err != nil {
		return err
	}
	if p.MaxWorkers > 1024 {
		return NewValidationError("max_workers", p.MaxWorkers, "must not exceed 1024")
	}
	return nil
}

// DefaultParallelConfig returns the default parallel processing configuration
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers: runtime.NumCPU(),
	}
}

// workers returns the effective worker count
func (p ParallelConfig) workers() int {
	if p.MaxWorkers <= 0 {
		return runtime.NumCPU()
	}
	return p.MaxWorkers
}

// forEach runs fn for every item of seq on at most workers goroutines.
// A panic in fn is recovered and handed to onPanic for that item; a panic
// in onPanic itself is dropped. Once ctx
// is done no further items are started; forEach then returns ctx.Err()
// after the running ones finish.
func forEach[T any](ctx context.Context, seq iter.Seq[T], workers int, fn func(T), onPanic func(T, error)) error {
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for item := range seq {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					notifyPanic(item, r, onPanic)
				}
			}()
			fn(item)
			return nil
		})
	}

	g.Wait()
	return ctx.Err()
}

func notifyPanic[T any](item T, r any, onPanic func(T, error)) {
	defer func() { recover() }()
	onPanic(item, fmt.Errorf("panic in decode worker: %v", r))
}
