package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Run after Close has been called.
var ErrPoolClosed = errors.New("parallel: worker pool is closed")

// WorkerPool is a fixed set of goroutines that execute band work.
//
// Each worker owns a queue. Run spreads items round-robin across the queues;
// a worker whose queue is empty steals from its neighbours before blocking.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()

	// done signals workers to drain their queues and exit.
	done chan struct{}
	wg   sync.WaitGroup

	// submitMu is held for reading while Run enqueues and for writing by
	// Close, so no item is enqueued after the workers start draining.
	submitMu sync.RWMutex
	running  atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.workQueues[id]
	for {
		select {
		case work := <-own:
			work()
			continue
		default:
		}

		if stolen := p.steal(id); stolen != nil {
			stolen()
			continue
		}

		select {
		case <-p.done:
			drain(own)
			return
		case work := <-own:
			work()
		}
	}
}

// drain runs whatever is left in a queue.
func drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *WorkerPool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case work := <-p.workQueues[(id+i)%p.workers]:
			return work
		default:
		}
	}
	return nil
}

// Run calls fn(i) for every i in [0, n) on the pool and waits for all calls
// to return.
//
// Items still queued when ctx is cancelled are skipped; items already running
// finish. Run returns ctx.Err() in that case, ErrPoolClosed if the pool was
// closed, and nil otherwise.
func (p *WorkerPool) Run(ctx context.Context, n int, fn func(i int)) error {
	if n <= 0 {
		return ctx.Err()
	}

	p.submitMu.RLock()
	if !p.running.Load() {
		p.submitMu.RUnlock()
		return ErrPoolClosed
	}

	var pending sync.WaitGroup
	pending.Add(n)

	submitted := 0
submit:
	for ; submitted < n; submitted++ {
		idx := submitted
		item := func() {
			defer pending.Done()
			if ctx.Err() != nil {
				return
			}
			fn(idx)
		}

		select {
		case p.workQueues[idx%p.workers] <- item:
		case <-ctx.Done():
			break submit
		}
	}
	p.submitMu.RUnlock()

	if rest := n - submitted; rest > 0 {
		pending.Add(-rest)
	}
	pending.Wait()
	return ctx.Err()
}

// Close stops the pool after all queued work has run.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.submitMu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.submitMu.Unlock()
		return
	}
	close(p.done)
	p.submitMu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
