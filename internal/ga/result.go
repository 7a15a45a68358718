package ga

import (
	"cloudsched/internal/cloud"
	"cloudsched/internal/opt"
)

func ToOptResult(best []int, bestFitness float64, evals, gens int, meta map[string]any) opt.Result {
	return opt.Result{
		Assignment:  cloud.CloneAssignment(best),
		Fitness:     bestFitness,
		Evaluations: evals,
		Iterations:  gens,
		Meta:        meta,
	}
}
