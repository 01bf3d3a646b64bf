package async

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool runs jobs on background goroutines with bounded parallelism.
// Submitting never blocks: each job gets its own goroutine, which waits for
// a slot before running.
type Pool struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	running atomic.Int64
	pending atomic.Int64
}

// NewPool returns a pool running at most workers jobs at once
// (0 = NumCPU).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(int64(workers)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Go schedules fn. The context passed to fn is cancelled by Close. Go
// returns false if the pool is closed. A panicking job is logged and does not
// take the pool down.
func (p *Pool) Go(name string, fn func(ctx context.Context)) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.wg.Add(1)
	p.mu.Unlock()

	p.pending.Add(1)
	go func() {
		defer p.wg.Done()
		err := p.sem.Acquire(p.ctx, 1)
		p.pending.Add(-1)
		if err != nil {
			slog.Debug("job dropped", slog.String("job", name))
			return
		}
		defer p.sem.Release(1)

		p.running.Add(1)
		defer p.running.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("job panicked",
					slog.String("job", name),
					slog.String("panic", fmt.Sprint(r)))
			}
		}()
		fn(p.ctx)
	}()
	return true
}

// Running returns the number of jobs currently executing.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// Pending returns the number of jobs waiting for a slot.
func (p *Pool) Pending() int {
	return int(p.pending.Load())
}

// Close cancels outstanding jobs and waits for them to return.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
