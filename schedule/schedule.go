// Package schedule runs billingkit's recurring maintenance jobs (pricing
// refresh reporting, stale checkout expiry) as named task chains on a cron
// scheduler, with recovery and logging middleware applied to every task.
package schedule

import (
	"context"
	"time"

	"github.com/flowlet/billingkit/logger"
)

// Task is one unit of scheduled work
// Each task must have a unique name and implement the Run method
type Task interface {
	// Name returns the unique identifier for this task
	Name() string
	// Run executes the task with the given context
	// The context may contain SharedData for inter-task communication
	Run(ctx context.Context) error
}

// Chain represents a chain of tasks that execute sequentially
type Chain struct {
	// Name is the name of the chain
	Name string
	// Spec is the cron spec for the chain
	Spec string
	// Tasks are the tasks in the chain
	Tasks []Task
}

// Scheduler manages scheduled task chains
// Tasks in a chain run sequentially; a task failure aborts the rest of
// the chain for that run
type Scheduler interface {
	// Start begins the scheduler
	Start()
	// Close stops the scheduler and waits for running jobs to complete
	Close()
	// AddTasks adds a chain of tasks executed according to the cron spec
	// The spec follows the standard cron format with support for seconds
	AddTasks(name string, spec string, tasks ...Task) error
	// AddChain is an alias for AddTasks
	AddChain(chain Chain) error
}

// New creates a scheduler with the given logger and middlewares
// Middlewares are applied to all tasks in the order they are provided,
// after the built-in recovery and logging middlewares
func New(log logger.Logger, mws ...Middleware) Scheduler {
	defaultMws := []Middleware{
		recoveryMiddleware(log),
		loggingMiddleware(log),
	}
	return newManager(log, append(defaultMws, mws...)...)
}

// EverySpec returns a cron spec firing at the given fixed interval
func EverySpec(d time.Duration) string {
	return "@every " + d.String()
}
