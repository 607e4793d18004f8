// ============================================================================
// Policy Impact Worker Pool - Concurrent Scenario Executor
// ============================================================================
//
// Package: internal/worker
// File: worker_pool.go
// Function: Manage the lifecycle of a fixed set of Worker goroutines and
//           distribute scenario tasks among them
//
// Architecture:
//   ┌─────────────┐
//   │   Runner    │ --Submit()--> taskCh
//   └─────────────┘
//         ↑
//   ReceiveResult()
//         ↑
//   ┌─────────────┐
//   │   Pool      │
//   │  ┌────────┐ │
//   │  │Worker 1│←── taskCh
//   │  │Worker 2│←── taskCh   ──→ resultCh
//   │  └────────┘ │
//   └─────────────┘
//
// Lifecycle:
//   1. NewPool() - create Pool, initialize channels
//   2. Start(n) - launch n Worker goroutines
//   3. Submit(task) - push task onto taskCh
//   4. ReceiveResult() - read one result from resultCh
//   5. Stop() - close taskCh, wait for all Workers to finish
//
// Errors:
//   - ErrPoolNotStarted: Submit before Start
//   - ErrPoolClosed: Submit after Stop, or ReceiveResult on a drained pool
//
// ============================================================================

package worker

import (
	"errors"
	"sync"
)

var (
	// ErrPoolClosed the pool has been stopped
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrPoolNotStarted the pool has not been started yet
	ErrPoolNotStarted = errors.New("worker pool not started")
)

// Pool fixed set of Workers sharing one task channel
type Pool struct {
	workers  []*Worker      // started Workers
	taskCh   chan Task      // tasks waiting for a Worker
	resultCh chan Result    // finished task results
	stopCh   chan struct{}  // closed by Stop
	wg       sync.WaitGroup // tracks running Workers
	started  bool
	stopped  bool
	mu       sync.Mutex // guards started/stopped/workers
}

// NewPool creates a Worker Pool.
//
// Parameters:
//   - bufferSize: capacity of the task and result channels
//
// Returns:
//   - *Pool: the pool, not yet started
func NewPool(bufferSize int) *Pool {
	return &Pool{
		workers:  make([]*Worker, 0),
		taskCh:   make(chan Task, bufferSize),
		resultCh: make(chan Result, bufferSize),
		stopCh:   make(chan struct{}),
	}
}

// Start launches workerCount Workers
func (p *Pool) Start(workerCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("pool already started")
	}
	if workerCount < 1 {
		workerCount = 1
	}

	for i := 0; i < workerCount; i++ {
		w := newWorker(i, p.taskCh, p.resultCh)
		p.workers = append(p.workers, w)

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run()
		}(w)
	}

	p.started = true
	return nil
}

// Submit queues a task. The pool lock is held for the send so Stop cannot
// close taskCh underneath it; with a buffer sized for the batch the send
// never blocks.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolClosed
	}

	p.taskCh <- task
	return nil
}

// ReceiveResult blocks until a result is available
func (p *Pool) ReceiveResult() (Result, error) {
	result, ok := <-p.resultCh
	if !ok {
		return Result{}, ErrPoolClosed
	}
	return result, nil
}

// Stop closes the task channel, waits for every Worker to drain it, then
// closes the result channel. Results not yet received remain readable.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.stopCh)
	close(p.taskCh)
	p.mu.Unlock()

	p.wg.Wait()
	close(p.resultCh)
}

// GetWorkerCount returns the number of started Workers
func (p *Pool) GetWorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// IsStarted reports whether Start has been called
func (p *Pool) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Done is closed once Stop has been called
func (p *Pool) Done() <-chan struct{} {
	return p.stopCh
}
