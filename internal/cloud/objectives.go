package cloud

import "math"

// Objectives is the two-objective fitness of the multi-objective search.
type Objectives struct {
	Makespan float64
	Cost     float64
}

// Unevaluated is the sentinel fitness of an individual pending evaluation.
func Unevaluated() Objectives {
	return Objectives{Makespan: math.Inf(1), Cost: math.Inf(1)}
}

// Sum is the scalarized value used for acceptance and ranking.
func (o Objectives) Sum() float64 {
	return o.Makespan + o.Cost
}

// Dominates reports Pareto dominance of o over other under minimization.
func (o Objectives) Dominates(other Objectives) bool {
	return (o.Makespan < other.Makespan && o.Cost <= other.Cost) ||
		(o.Makespan <= other.Makespan && o.Cost < other.Cost)
}
