package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of in-flight oracle calls for one pipeline run.
// It is created when processing starts and passed through explicitly;
// there is no process-wide shared pool.
type Pool struct {
	limit int
}

// DefaultLimit sizes the pool for I/O-bound remote calls.
func DefaultLimit() int {
	n := runtime.GOMAXPROCS(0) * 4
	if n > 32 {
		n = 32
	}
	return n
}

func New(limit int) *Pool {
	if limit <= 0 {
		limit = DefaultLimit()
	}
	return &Pool{limit: limit}
}

// Limit returns the maximum number of concurrent tasks.
func (p *Pool) Limit() int {
	return p.limit
}

// ForEach runs fn for every i in [0, n) with bounded parallelism and waits
// for all tasks to finish. Tasks already started are not cancelled when one
// fails; the first error is returned after the join.
func (p *Pool) ForEach(ctx context.Context, n int, fn func(i int) error) error {
	var g errgroup.Group
	g.SetLimit(p.limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	return g.Wait()
}
