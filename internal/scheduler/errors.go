package scheduler

import (
	"fmt"

	"github.com/pkg/errors"

	"cloudsched/internal/cloud"
)

// ErrRunComplete is returned by Schedule once every task of the run has
// been dispatched. It is not a failure; Reset starts a new run.
var ErrRunComplete = errors.New("all tasks have been dispatched")

// AssignmentError means the optimizer produced a vector that cannot drive
// dispatch. The process must not continue with such an assignment.
type AssignmentError struct {
	Algorithm string
	Err       error
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("invalid %s assignment: %v", e.Algorithm, e.Err)
}

func (e *AssignmentError) Cause() error { return e.Err }
func (e *AssignmentError) Unwrap() error { return e.Err }

// DispatchError reports a single task that could not be delivered to its
// worker. The task is not retried.
type DispatchError struct {
	TaskID   int
	TaskName string
	Weight   cloud.WeightClass
	Worker   string
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch task %q (%s) to %s: %v", e.TaskName, e.Weight, e.Worker, e.Err)
}

func (e *DispatchError) Cause() error { return e.Err }
func (e *DispatchError) Unwrap() error { return e.Err }
