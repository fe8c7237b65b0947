package worker

import (
	"context"
	"sync"
)

// Task is a unit of work producing one result
type Task[R any] func(ctx context.Context) R

type job[R any] struct {
	index int
	run   Task[R]
}

type slot[R any] struct {
	index  int
	result R
}

// Pool runs tasks on a fixed number of goroutines and returns results in
// submission order
type Pool[R any] struct {
	workers    int
	jobQueue   chan job[R]
	results    chan slot[R]
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	submitted  int

	collected []slot[R]
	collectWg sync.WaitGroup
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[R]{
		workers:    workers,
		jobQueue:   make(chan job[R], workers*2),
		results:    make(chan slot[R], workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers and the result collector
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	// drain results as they arrive so Submit never waits on a full results channel
	p.collectWg.Add(1)
	go func() {
		defer p.collectWg.Done()
		for s := range p.results {
			p.collected = append(p.collected, s)
		}
	}()
}

func (p *Pool[R]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := j.run(p.ctx)
			select {
			case p.results <- slot[R]{index: j.index, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a task. It returns false if the pool was shut down.
// Submit must not be called concurrently with itself or after Wait.
func (p *Pool[R]) Submit(task Task[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job[R]{index: p.submitted, run: task}:
		p.submitted++
		return true
	}
}

// Wait waits for all submitted tasks and returns their results in submission
// order. Tasks that never ran because the pool was cancelled leave a zero value.
func (p *Pool[R]) Wait() []R {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.collectWg.Wait()
	p.cancelFunc()

	results := make([]R, p.submitted)
	for _, s := range p.collected {
		results[s.index] = s.result
	}
	return results
}

// Shutdown stops the workers immediately
func (p *Pool[R]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	p.collectWg.Wait()
}

func (p *Pool[R]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
