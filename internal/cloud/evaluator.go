package cloud

import "github.com/pkg/errors"

// Cost model constants of the simulated datacenter.
const (
	CloudletLength = 10000.0
	CostPerMIPS    = 0.5
	RAMUsage       = 512.0
	CostPerRAM     = 0.05
	BandwidthUsage = 1000.0
	CostPerBW      = 0.1
)

// ExecTime is the estimated execution time of a task of class w.
func ExecTime(w WeightClass) float64 {
	return CloudletLength / w.MIPS()
}

// TaskCost is the estimated cost of running a task of class w.
func TaskCost(w WeightClass) float64 {
	return ExecTime(w)*CostPerMIPS + RAMUsage*CostPerRAM + BandwidthUsage*CostPerBW
}

// Breakdown is the per-worker aggregation of an assignment.
type Breakdown struct {
	Load      []float64
	Cost      []float64
	Makespan  float64
	TotalExec float64
	TotalCost float64
}

// Evaluator computes the cost and balance models for one workload.
// It reuses scratch buffers and is not safe for concurrent use.
type Evaluator struct {
	w        *Workload
	execTime []float64
	taskCost []float64

	load   []float64
	cost   []float64
	counts []int
}

func NewEvaluator(w *Workload) (*Evaluator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	e := &Evaluator{
		w:        w,
		execTime: make([]float64, w.N()),
		taskCost: make([]float64, w.N()),
		load:     make([]float64, w.Workers),
		cost:     make([]float64, w.Workers),
		counts:   make([]int, w.Workers),
	}
	for i, t := range w.Tasks {
		e.execTime[i] = ExecTime(t.Weight)
		e.taskCost[i] = TaskCost(t.Weight)
	}
	return e, nil
}

func (e *Evaluator) Workload() *Workload { return e.w }

func (e *Evaluator) check(a []int) error {
	if e == nil || e.w == nil {
		return errors.New("nil evaluator")
	}
	return ValidateAssignment(a, e.w.N(), e.w.Workers)
}

// accumulate fills the load/cost scratch buffers.
func (e *Evaluator) accumulate(a []int) {
	for w := range e.load {
		e.load[w] = 0
		e.cost[w] = 0
	}
	for i, w := range a {
		e.load[w] += e.execTime[i]
		e.cost[w] += e.taskCost[i]
	}
}

// Breakdown returns freshly allocated per-worker sums for a.
func (e *Evaluator) Breakdown(a []int) (Breakdown, error) {
	if err := e.check(a); err != nil {
		return Breakdown{}, err
	}
	e.accumulate(a)
	b := Breakdown{
		Load: make([]float64, len(e.load)),
		Cost: make([]float64, len(e.cost)),
	}
	copy(b.Load, e.load)
	copy(b.Cost, e.cost)
	for w := range b.Load {
		if b.Load[w] > b.Makespan {
			b.Makespan = b.Load[w]
		}
		b.TotalExec += b.Load[w]
		b.TotalCost += b.Cost[w]
	}
	return b, nil
}

// Scalar is the single-objective fitness: total execution time summed over
// all workers plus total cost. Lower is better.
func (e *Evaluator) Scalar(a []int) (float64, error) {
	if err := e.check(a); err != nil {
		return 0, err
	}
	e.accumulate(a)
	total := 0.0
	for w := range e.load {
		total += e.load[w] + e.cost[w]
	}
	return total, nil
}

func (e *Evaluator) MustScalar(a []int) float64 {
	v, err := e.Scalar(a)
	if err != nil {
		panic(err)
	}
	return v
}

// Objectives returns (makespan, total cost). Both are minimized.
func (e *Evaluator) Objectives(a []int) (Objectives, error) {
	if err := e.check(a); err != nil {
		return Objectives{}, err
	}
	e.accumulate(a)
	var o Objectives
	for w := range e.load {
		if e.load[w] > o.Makespan {
			o.Makespan = e.load[w]
		}
		o.Cost += e.cost[w]
	}
	return o, nil
}

func (e *Evaluator) MustObjectives(a []int) Objectives {
	o, err := e.Objectives(a)
	if err != nil {
		panic(err)
	}
	return o
}

// Balance scores how evenly task counts spread over all workers:
// 1 / (maxCount - minCount + 1). Higher is better, 1 is perfect.
func (e *Evaluator) Balance(a []int) (float64, error) {
	if err := e.check(a); err != nil {
		return 0, err
	}
	for w := range e.counts {
		e.counts[w] = 0
	}
	for _, w := range a {
		e.counts[w]++
	}
	lo, hi := e.counts[0], e.counts[0]
	for _, c := range e.counts[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return 1.0 / float64(hi-lo+1), nil
}

func (e *Evaluator) MustBalance(a []int) float64 {
	v, err := e.Balance(a)
	if err != nil {
		panic(err)
	}
	return v
}
