package timeline

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	graniteerrors "github.com/go-drift/granite/pkg/errors"
)

// Executor runs background work off the scheduler goroutine.
type Executor interface {
	Go(fn func())
}

// GoExecutor starts one goroutine per call.
type GoExecutor struct{}

// Go runs fn on a new goroutine.
func (GoExecutor) Go(fn func()) { go fn() }

// Pool runs at most a fixed number of functions at a time. Extra calls wait
// for a slot.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewPool returns a pool with limit slots. A limit below one is treated as one.
func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(limit))}
}

// Go queues fn on the pool. A panic in fn is reported to the global error
// handler instead of crashing the process.
func (p *Pool) Go(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		defer graniteerrors.Recover("timeline.Pool")
		fn()
	}()
}

// Wait blocks until every queued function has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
