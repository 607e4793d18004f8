package worker

import (
	"time"

	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// Task one scenario run to execute
type Task struct {
	Scenario types.ScenarioName          // scenario this task computes
	Execute  func() (interface{}, error) // the run itself; must not share mutable state with other tasks
}

// Result outcome of a Task
type Result struct {
	Scenario types.ScenarioName // scenario of the task
	Value    interface{}        // value returned by Execute
	Error    error              // Execute error or recovered panic
	Duration time.Duration      // wall time of Execute
}
