package cloud

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeTaskWorkload(t *testing.T) *Workload {
	w, err := NewWorkload([]Task{
		{ID: 1, Name: "t1", Weight: Light},
		{ID: 2, Name: "t2", Weight: Heavy},
		{ID: 3, Name: "t3", Weight: Medium},
	}, 2)
	require.NoError(t, err)
	return w
}

func TestBreakdownThreeTasks(t *testing.T) {
	e, err := NewEvaluator(threeTaskWorkload(t))
	require.NoError(t, err)

	b, err := e.Breakdown([]int{0, 1, 0})
	require.NoError(t, err)

	assert.InDelta(t, 45.0, b.Load[0], 1e-9)
	assert.InDelta(t, 10000.0/600, b.Load[1], 1e-9)
	assert.InDelta(t, 45.0, b.Makespan, 1e-9)
	assert.InDelta(t, 45.0+10000.0/600, b.TotalExec, 1e-9)

	fixed := 512*0.05 + 1000*0.1
	assert.InDelta(t, 125.6, fixed, 1e-9)
	assert.InDelta(t, 25*0.5+fixed+20*0.5+fixed, b.Cost[0], 1e-9)
	assert.InDelta(t, (10000.0/600)*0.5+fixed, b.Cost[1], 1e-9)
	assert.InDelta(t, b.Cost[0]+b.Cost[1], b.TotalCost, 1e-9)

	o, err := e.Objectives([]int{0, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, b.Makespan, o.Makespan, 1e-9)
	assert.InDelta(t, b.TotalCost, o.Cost, 1e-9)

	s, err := e.Scalar([]int{0, 1, 0})
	require.NoError(t, err)
	assert.InDelta(t, b.TotalExec+b.TotalCost, s, 1e-9)
}

func TestBreakdownDoesNotAliasScratch(t *testing.T) {
	e, err := NewEvaluator(threeTaskWorkload(t))
	require.NoError(t, err)

	first, err := e.Breakdown([]int{0, 0, 0})
	require.NoError(t, err)
	_, err = e.Breakdown([]int{1, 1, 1})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, first.Load[1], 1e-9)
	assert.InDelta(t, 25.0+20.0+10000.0/600, first.Load[0], 1e-9)
}

func TestEvaluatorDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := RandomWorkload(40, 5, rng)
	e, err := NewEvaluator(w)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		a := RandomAssignment(w.N(), w.Workers, rng)
		o1 := e.MustObjectives(a)
		s1 := e.MustScalar(a)
		// interleave another evaluation to dirty the scratch buffers
		e.MustScalar(RandomAssignment(w.N(), w.Workers, rng))
		assert.Equal(t, o1, e.MustObjectives(a))
		assert.Equal(t, s1, e.MustScalar(a))
	}
}

func TestScalarIndependentOfAssignment(t *testing.T) {
	// total exec and total cost are sums over all tasks, so the scalar
	// objective is the same for every valid assignment
	rng := rand.New(rand.NewSource(3))
	w := RandomWorkload(25, 4, rng)
	e, err := NewEvaluator(w)
	require.NoError(t, err)

	want := e.MustScalar(RandomAssignment(w.N(), w.Workers, rng))
	for i := 0; i < 10; i++ {
		assert.InDelta(t, want, e.MustScalar(RandomAssignment(w.N(), w.Workers, rng)), 1e-6)
	}
}

func TestBalance(t *testing.T) {
	w, err := NewWorkload([]Task{
		{Weight: Light}, {Weight: Heavy}, {Weight: Medium}, {Weight: Light},
	}, 2)
	require.NoError(t, err)
	e, err := NewEvaluator(w)
	require.NoError(t, err)

	tests := []struct {
		name string
		a    []int
		want float64
	}{
		{"balanced", []int{0, 1, 1, 0}, 1.0},
		{"three to one", []int{0, 0, 0, 1}, 1.0 / 3},
		{"all on one", []int{1, 1, 1, 1}, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Balance(tt.a)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluatorRejectsInvalidAssignment(t *testing.T) {
	e, err := NewEvaluator(threeTaskWorkload(t))
	require.NoError(t, err)

	_, err = e.Scalar([]int{0, 1})
	assert.Error(t, err)
	_, err = e.Objectives([]int{0, 2, 0})
	assert.Error(t, err)
	_, err = e.Balance([]int{-1, 0, 0})
	assert.Error(t, err)
	assert.Panics(t, func() { e.MustScalar([]int{0}) })
}

func TestNewEvaluatorRejectsEmptyWorkload(t *testing.T) {
	_, err := NewEvaluator(&Workload{Workers: 2})
	assert.Error(t, err)
	_, err = NewEvaluator(&Workload{Tasks: []Task{{Weight: Light}}})
	assert.Error(t, err)
	_, err = NewEvaluator(nil)
	assert.Error(t, err)
}

func TestDominates(t *testing.T) {
	a := Objectives{Makespan: 1, Cost: 1}
	assert.True(t, a.Dominates(Objectives{Makespan: 2, Cost: 1}))
	assert.True(t, a.Dominates(Objectives{Makespan: 1, Cost: 2}))
	assert.False(t, a.Dominates(a))
	assert.False(t, a.Dominates(Objectives{Makespan: 0.5, Cost: 2}))
	assert.True(t, math.IsInf(Unevaluated().Sum(), 1))
}
