package opt

import (
	"context"
	"time"

	"cloudsched/internal/cloud"
)

// Optimizer produces an assignment vector for a workload.
type Optimizer interface {
	Solve(ctx context.Context, w *cloud.Workload) (Result, error)
}

type Result struct {
	// Assignment maps task index to worker index.
	Assignment []int
	// Fitness is the scalar value the algorithm optimized. Its direction is
	// algorithm specific: the bat algorithm maximizes, the rest minimize.
	Fitness float64
	// Objectives is (makespan, cost) of Assignment under the cost model.
	Objectives  cloud.Objectives
	Evaluations int
	Iterations  int
	Duration    time.Duration
	Meta        map[string]any
}

// Stopped marks a result returned early because ctx was done.
func Stopped(assignment []int, fitness float64, evals, iter int, start time.Time) Result {
	return Result{
		Assignment:  cloud.CloneAssignment(assignment),
		Fitness:     fitness,
		Evaluations: evals,
		Iterations:  iter,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"stopped": "context",
		},
	}
}
