package moics

import (
	"cloudsched/internal/cloud"
)

// Individual is a chromosome with its (makespan, cost) fitness.
type Individual struct {
	Chromosome []int
	Fitness    cloud.Objectives
}

func (ind Individual) clone() Individual {
	return Individual{
		Chromosome: cloud.CloneAssignment(ind.Chromosome),
		Fitness:    ind.Fitness,
	}
}

// ParetoFront builds the non-dominated set of pop incrementally in
// population order. Front members are independent copies.
func ParetoFront(pop []Individual) []Individual {
	front := make([]Individual, 0, len(pop))
	for _, cand := range pop {
		dominated := false
		for _, f := range front {
			if f.Fitness.Dominates(cand.Fitness) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}

		// Удаление членов фронта, доминируемых кандидатом
		kept := front[:0]
		for _, f := range front {
			if !cand.Fitness.Dominates(f.Fitness) {
				kept = append(kept, f)
			}
		}
		front = append(kept, cand.clone())
	}
	return front
}

// pickLowestSum returns the front member with the smallest fitness sum.
// The first one wins ties.
func pickLowestSum(front []Individual) Individual {
	best := front[0]
	for _, f := range front[1:] {
		if f.Fitness.Sum() < best.Fitness.Sum() {
			best = f
		}
	}
	return best
}
