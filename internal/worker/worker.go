// ============================================================================
// Policy Impact Worker - Scenario Execution Unit
// ============================================================================
//
// Package: internal/worker
// File: worker.go
// Function: Work unit that runs scenario tasks, each Worker runs in an independent goroutine
//
// How it works:
//   Each Worker is an independent goroutine that continuously executes the following loop:
//   1. Receive task from taskCh (blocking wait)
//   2. Run task.Execute, converting a panic into an error
//   3. Send result to resultCh
//   4. Repeat above process until taskCh is closed
//
// Result Delivery:
//   Results are sent with a blocking send. The pool's result buffer must be
//   at least as large as the number of tasks submitted before results are
//   read, otherwise Stop() waits on a full channel.
//
// ============================================================================

package worker

import (
	"fmt"
	"time"
)

// Worker represents a work execution unit
type Worker struct {
	id       int           // Worker identifier, used for logging
	taskCh   <-chan Task   // Task channel (read-only)
	resultCh chan<- Result // Result channel (write-only)
}

// newWorker creates a new Worker instance
func newWorker(id int, taskCh <-chan Task, resultCh chan<- Result) *Worker {
	return &Worker{
		id:       id,
		taskCh:   taskCh,
		resultCh: resultCh,
	}
}

// Run is the main loop of Worker
func (w *Worker) Run() {
	for task := range w.taskCh {
		start := time.Now()
		value, err := w.execute(task)

		w.resultCh <- Result{
			Scenario: task.Scenario,
			Value:    value,
			Error:    err,
			Duration: time.Since(start),
		}
	}
}

// execute runs the task and recovers a panic into an error
func (w *Worker) execute(task Task) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d: scenario %s panicked: %v", w.id, task.Scenario, r)
		}
	}()

	if task.Execute == nil {
		return nil, fmt.Errorf("worker %d: scenario %s has no Execute func", w.id, task.Scenario)
	}
	return task.Execute()
}
