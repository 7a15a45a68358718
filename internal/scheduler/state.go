package scheduler

import "time"

// runState holds everything a run accumulates between two resets.
type runState struct {
	assignment []int
	cursor     int
	completed  int
	reported   bool

	firstDispatch time.Time

	startTimes  []float64
	finishTimes []float64
	execTimes   []float64
	waiting     []float64
	workerExec  map[string]float64
	totalCost   float64
}

func newRunState() runState {
	return runState{workerExec: make(map[string]float64)}
}

// record folds one successful dispatch into the accumulators.
func (s *runState) record(worker string, o Outcome) {
	start := float64(o.StartTime)
	exec := float64(o.ExecutionTime)

	s.startTimes = append(s.startTimes, start)
	s.finishTimes = append(s.finishTimes, float64(o.FinishTime))
	s.execTimes = append(s.execTimes, exec)
	s.waiting = append(s.waiting, start-float64(s.firstDispatch.UnixMilli()))
	s.workerExec[worker] += exec
	s.totalCost += TaskCost(o.ExecutionTime)
	s.completed++
}

// TaskCost is the billed cost of a task that ran for execMs milliseconds.
func TaskCost(execMs int64) float64 {
	return float64(execMs) / 1000 * CostPerSecond
}

// CostPerSecond is the price of one second of worker execution.
const CostPerSecond = 0.5
