package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestImbalanceDegree(t *testing.T) {
	assert.Zero(t, imbalanceDegree(nil))
	assert.Zero(t, imbalanceDegree(map[string]float64{"a": 0, "b": 0}))
	assert.Zero(t, imbalanceDegree(map[string]float64{"a": 250}))
	assert.InDelta(t, 1.0, imbalanceDegree(map[string]float64{"a": 100, "b": 300}), 1e-9)
}

func TestUtilizationMean(t *testing.T) {
	var u utilization
	assert.Zero(t, u.mean())

	u.add(Sample{Host: "a", AvgCPU: 40})
	u.add(Sample{Host: "b", AvgCPU: 10})
	u.add(Sample{Host: "b", AvgCPU: 20})
	u.add(Sample{Host: "b", AvgCPU: 30})
	// host means 40 and 20
	assert.InDelta(t, 30.0, u.mean(), 1e-9)

	u.clear()
	assert.Zero(t, u.len())
}

func TestRunStateRecord(t *testing.T) {
	s := newRunState()
	s.firstDispatch = time.Unix(0, 0).Add(500 * time.Millisecond)

	s.record("w", Outcome{StartTime: 700, FinishTime: 1700, ExecutionTime: 1000})
	s.record("w", Outcome{StartTime: 900, FinishTime: 1400, ExecutionTime: 500})

	assert.Equal(t, 2, s.completed)
	assert.Equal(t, []float64{200, 400}, s.waiting)
	assert.Equal(t, 1500.0, s.workerExec["w"])
	assert.InDelta(t, 0.75, s.totalCost, 1e-12)
}

func TestTaskCost(t *testing.T) {
	assert.InDelta(t, 0.5, TaskCost(1000), 1e-12)
	assert.Zero(t, TaskCost(0))
}
