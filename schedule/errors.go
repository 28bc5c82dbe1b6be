package schedule

import "errors"

// ErrNoTasks is returned when a chain is added without any tasks.
var ErrNoTasks = errors.New("schedule: chain has no tasks")
