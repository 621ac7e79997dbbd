package fanout

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/nodeops/pool"
)

// Op is an operation run against one destination over a pooled connection.
//
// Contract:
// - Concurrency: a fan-out calls op from many goroutines, one destination
//   per call; the connection is owned by that call until it returns.
// - Context: op should honor cancellation/deadlines.
// - Errors: returning an error marks the destination failed; it is never
//   retried by the fan-out.
type Op[C comparable, R any] func(ctx context.Context, dest string, conn C) (R, error)

// Result pairs a destination with its operation's value.
type Result[R any] struct {
	Dest  string
	Value R
}

// Outcome pairs a destination with its operation's value or error.
type Outcome[R any] struct {
	Dest  string
	Value R
	Err   error
}

// All runs op against every destination concurrently and returns the
// results in the order the destinations were given. Destinations only block
// each other through the pool's per-destination cap. Every destination runs
// to completion even when another fails; afterwards, if any failed, All
// returns a nil slice and the first error in destination order.
func All[C comparable, R any](ctx context.Context, p *pool.Pool[C], dests []string, op Op[C, R]) ([]Result[R], error) {
	values := make([]R, len(dests))
	errs := make([]error, len(dests))

	var g errgroup.Group
	for i, dest := range dests {
		g.Go(func() error {
			errs[i] = p.With(ctx, dest, func(ctx context.Context, conn C) error {
				v, err := op(ctx, dest, conn)
				if err != nil {
					return err
				}
				values[i] = v
				return nil
			})
			return errs[i]
		})
	}

	if err := g.Wait(); err != nil {
		// Wait reports the first error by completion order; report the
		// first by destination order instead.
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	results := make([]Result[R], len(dests))
	for i, dest := range dests {
		results[i] = Result[R]{Dest: dest, Value: values[i]}
	}
	return results, nil
}

// Collect runs op against every destination and returns one Outcome per
// destination in the order given, never failing itself.
//
// Connections are acquired sequentially; a destination whose acquisition
// fails gets the error as its outcome and its operation never runs, with no
// effect on any other destination's accounting. Operations start as soon as
// their connection is acquired and run concurrently. Every acquired
// connection is released exactly once, when its operation finishes.
func Collect[C comparable, R any](ctx context.Context, p *pool.Pool[C], dests []string, op Op[C, R]) []Outcome[R] {
	outcomes := make([]Outcome[R], len(dests))

	var wg sync.WaitGroup
	for i, dest := range dests {
		outcomes[i].Dest = dest

		conn, err := p.Acquire(ctx, dest)
		if err != nil {
			outcomes[i].Err = err
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.Release(dest, conn)
			outcomes[i].Value, outcomes[i].Err = op(ctx, dest, conn)
		}()
	}
	wg.Wait()

	return outcomes
}
