package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

type Job any

type ProcessFunc func(ctx context.Context, job Job) error

// Pool runs submitted jobs on a fixed number of goroutines. The first error
// returned by a job is kept and reported by Stop.
type Pool struct {
	numWorkers int
	jobs       chan Job
	processor  ProcessFunc
	wg         sync.WaitGroup

	processed atomic.Int64
	errOnce   sync.Once
	err       error
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.processor(ctx, job); err != nil {
				p.errOnce.Do(func() { p.err = err })
			}
			p.processed.Add(1)
		}
	}
}

// Submit queues a job, blocking while the buffer is full. It gives up and
// returns ctx.Err() once the context is done.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queue, waits for in-flight jobs and returns the first job error.
func (p *Pool) Stop() error {
	close(p.jobs)
	p.wg.Wait()
	return p.err
}

func (p *Pool) Processed() int64 {
	return p.processed.Load()
}
