package engine

import (
	"context"
	"sync"
)

// job is the unit of work dispatched to a worker.
type job[T, R any] struct {
	ctx     context.Context
	payload T
	result  chan<- jobResult[R]
}

type jobResult[R any] struct {
	value R
	err   error
}

// workerPool is a fixed-size goroutine pool with a bounded input queue.
type workerPool[T, R any] struct {
	queue   chan job[T, R]
	process func(ctx context.Context, t T) (R, error)
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity cap.
func newWorkerPool[T, R any](ctx context.Context, n, cap int, fn func(context.Context, T) (R, error)) *workerPool[T, R] {
	p := &workerPool[T, R]{
		queue:   make(chan job[T, R], cap),
		process: fn,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool[T, R]) run(ctx context.Context) {
	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			var res jobResult[R]
			if err := j.ctx.Err(); err != nil {
				// the submitter gave up while the job was queued
				res.err = err
			} else {
				res.value, res.err = p.process(j.ctx, j.payload)
			}
			j.result <- res
		case <-ctx.Done():
			return
		}
	}
}

// Submit enqueues a job without blocking. The returned channel receives
// exactly one result; ok is false when the queue is full or drained.
func (p *workerPool[T, R]) Submit(ctx context.Context, t T) (<-chan jobResult[R], bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, false
	}
	resultC := make(chan jobResult[R], 1)
	select {
	case p.queue <- job[T, R]{ctx: ctx, payload: t, result: resultC}:
		return resultC, true
	default:
		return nil, false
	}
}

// Drain closes the queue and waits for all workers to finish. Queued jobs
// are still processed.
func (p *workerPool[T, R]) Drain() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *workerPool[T, R]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *workerPool[T, R]) QueueCap() int {
	return cap(p.queue)
}
