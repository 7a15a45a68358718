package cloud

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// WeightClass is the load label of a task.
type WeightClass string

const (
	Light  WeightClass = "light"
	Medium WeightClass = "medium"
	Heavy  WeightClass = "heavy"
)

// defaultMIPS applies to any weight class outside the known three.
const defaultMIPS = 500.0

var weightAliases = map[string]WeightClass{
	"light":  Light,
	"ringan": Light,
	"medium": Medium,
	"sedang": Medium,
	"heavy":  Heavy,
	"berat":  Heavy,
}

// ParseWeightClass normalizes a label. Unknown labels are kept verbatim
// and fall back to the default MIPS.
func ParseWeightClass(s string) WeightClass {
	key := strings.ToLower(strings.TrimSpace(s))
	if w, ok := weightAliases[key]; ok {
		return w
	}
	return WeightClass(s)
}

// MIPS returns the throughput constant of the weight class.
func (w WeightClass) MIPS() float64 {
	switch ParseWeightClass(string(w)) {
	case Light:
		return 400
	case Medium:
		return 500
	case Heavy:
		return 600
	default:
		return defaultMIPS
	}
}

// Known reports whether the class is one of light, medium or heavy.
func (w WeightClass) Known() bool {
	_, ok := weightAliases[strings.ToLower(strings.TrimSpace(string(w)))]
	return ok
}

type Task struct {
	ID     int         `json:"id" yaml:"id"`
	Name   string      `json:"name" yaml:"name"`
	Weight WeightClass `json:"weight" yaml:"weight"`
}

// Workload is the immutable input of one scheduling run: tasks in dispatch
// order and the size of the worker pool.
type Workload struct {
	Tasks   []Task
	Workers int
}

func NewWorkload(tasks []Task, workers int) (*Workload, error) {
	w := &Workload{Tasks: tasks, Workers: workers}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workload) Validate() error {
	if w == nil {
		return errors.New("workload is nil")
	}
	if len(w.Tasks) == 0 {
		return errors.New("workload has no tasks")
	}
	if w.Workers <= 0 {
		return errors.Errorf("workers must be > 0 (got %d)", w.Workers)
	}
	return nil
}

// N returns the task count.
func (w *Workload) N() int { return len(w.Tasks) }

var randomClasses = []WeightClass{Light, Medium, Heavy}

// RandomWorkload generates tasks with uniformly drawn weight classes.
func RandomWorkload(tasks, workers int, rng *rand.Rand) *Workload {
	if rng == nil {
		panic("rng is nil")
	}
	ts := make([]Task, tasks)
	for i := range ts {
		ts[i] = Task{
			ID:     i + 1,
			Name:   "task-" + strconv.Itoa(i+1),
			Weight: randomClasses[rng.Intn(len(randomClasses))],
		}
	}
	w, err := NewWorkload(ts, workers)
	if err != nil {
		panic(err)
	}
	return w
}
