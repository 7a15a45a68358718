package scheduler

import "github.com/uber-go/tally/v4"

// Metrics tracks dispatch and run metrics of the scheduler.
type Metrics struct {
	DispatchSuccess tally.Counter
	DispatchFail    tally.Counter
	DispatchLatency tally.Timer

	RunCompleted tally.Counter
	RunExhausted tally.Counter

	OptimizerSolve     tally.Counter
	OptimizerSolveFail tally.Counter
	OptimizerDuration  tally.Timer

	CPUReports tally.Counter

	// last completed run
	Makespan   tally.Gauge
	Throughput tally.Gauge
	TotalCost  tally.Gauge
	Imbalance  tally.Gauge
}

// NewMetrics returns a new Metrics struct, with all metrics initialized
// and rooted at the given tally.Scope
func NewMetrics(scope tally.Scope) *Metrics {
	dispatchScope := scope.SubScope("dispatch")
	runScope := scope.SubScope("run")
	optScope := scope.SubScope("optimizer")

	return &Metrics{
		DispatchSuccess: dispatchScope.Counter("success"),
		DispatchFail:    dispatchScope.Counter("fail"),
		DispatchLatency: dispatchScope.Timer("latency"),

		RunCompleted: runScope.Counter("completed"),
		RunExhausted: runScope.Counter("exhausted"),

		OptimizerSolve:     optScope.Counter("solve"),
		OptimizerSolveFail: optScope.Counter("solve_fail"),
		OptimizerDuration:  optScope.Timer("duration"),

		CPUReports: scope.SubScope("cpu").Counter("reports"),

		Makespan:   runScope.Gauge("makespan_seconds"),
		Throughput: runScope.Gauge("throughput"),
		TotalCost:  runScope.Gauge("total_cost"),
		Imbalance:  runScope.Gauge("imbalance_degree"),
	}
}
