package records

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/ordsync/pkg/constants"
	"github.com/agentstation/ordsync/pkg/errors"
	"github.com/agentstation/ordsync/pkg/refdata"
)

// Pool resolves locators with bounded parallelism and yields records in
// locator order. With one worker it resolves strictly one at a time.
type Pool struct {
	resolver Resolver
	workers  int
}

// NewPool returns a pool of workers over r. Out-of-range worker counts are clamped.
func NewPool(r Resolver, workers int) *Pool {
	if workers < 1 {
		workers = constants.DefaultWorkers
	}
	if workers > constants.MaxWorkers {
		workers = constants.MaxWorkers
	}
	return &Pool{resolver: r, workers: workers}
}

// Workers returns the effective worker count.
func (p *Pool) Workers() int {
	return p.workers
}

type result struct {
	record refdata.Record
	err    error
}

// Resolve returns a lazy sequence of records in locator order. The sequence
// stops after the first error, which is yielded with a zero Record. A record
// is only yielded once every earlier record has been yielded.
func (p *Pool) Resolve(ctx context.Context, locators []string) iter.Seq2[refdata.Record, error] {
	if p.workers <= 1 {
		return p.sequential(ctx, locators)
	}
	return p.ordered(ctx, locators)
}

func (p *Pool) sequential(ctx context.Context, locators []string) iter.Seq2[refdata.Record, error] {
	return func(yield func(refdata.Record, error) bool) {
		for i, locator := range locators {
			rec, err := p.resolver.Resolve(ctx, i, locator)
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

func (p *Pool) ordered(ctx context.Context, locators []string) iter.Seq2[refdata.Record, error] {
	return func(yield func(refdata.Record, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)

		// Each slot receives exactly one result. The window bounds how far
		// resolution may run ahead of the consumer.
		pending := make(chan chan result, p.workers)
		go func() {
			defer close(pending)
			for i, locator := range locators {
				slot := make(chan result, 1)
				select {
				case pending <- slot:
				case <-gctx.Done():
					return
				}
				g.Go(func() error {
					rec, err := p.resolver.Resolve(gctx, i, locator)
					slot <- result{record: rec, err: err}
					return err
				})
			}
		}()

		stop := func() error {
			cancel()
			for range pending {
			}
			return g.Wait()
		}

		yielded := 0
		for slot := range pending {
			r := <-slot
			if r.err != nil {
				// A canceled group means another record failed first; its
				// error is the cause, whatever this slot reports.
				canceled := gctx.Err() != nil
				werr := stop()
				err := r.err
				if canceled && werr != nil {
					err = werr
				}
				yield(refdata.Record{}, err)
				return
			}
			if !yield(r.record, nil) {
				_ = stop()
				return
			}
			yielded++
		}

		// The window closes early only when the context ends.
		err := g.Wait()
		if err == nil && yielded < len(locators) {
			err = gctx.Err()
			if err == nil {
				err = errors.ErrCanceled
			}
		}
		if err != nil {
			yield(refdata.Record{}, err)
		}
	}
}
