package ga

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudsched/internal/cloud"
)

func TestSolveReturnsValidAssignment(t *testing.T) {
	w := cloud.RandomWorkload(50, 4, rand.New(rand.NewSource(1)))
	e, err := cloud.NewEvaluator(w)
	require.NoError(t, err)

	for seed := int64(0); seed < 5; seed++ {
		s, err := New(DefaultConfig(), rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		res, err := s.Solve(context.Background(), w)
		require.NoError(t, err)
		require.NoError(t, cloud.ValidateAssignment(res.Assignment, w.N(), w.Workers))
		assert.Equal(t, e.MustScalar(res.Assignment), res.Fitness)
		assert.Equal(t, e.MustObjectives(res.Assignment), res.Objectives)
	}
}

func TestEvaluationCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population = 7
	cfg.Elite = 2
	cfg.Generations = 3

	s, err := New(cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), cloud.RandomWorkload(10, 3, rand.New(rand.NewSource(5))))
	require.NoError(t, err)
	// начальная популяция + (population - elite) потомков на поколение
	assert.Equal(t, 7+3*5, res.Evaluations)
}

func TestUniformCrossoverTakesGenesFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p1 := []int{0, 0, 0, 0, 0, 0}
	p2 := []int{1, 1, 1, 1, 1, 1}
	c1 := make([]int, 6)
	c2 := make([]int, 6)
	uniformCrossover(p1, p2, c1, c2, rng)
	for i := range c1 {
		assert.Equal(t, 1, c1[i]+c2[i])
	}
}

func TestTournamentSelectPicksBest(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	scores := []float64{5, 1, 3}
	// турнир, заведомо больший популяции, почти наверняка включает лучшую особь
	assert.Equal(t, 1, tournamentSelect(scores, 64, rng))
}

func TestSelectParentsWithDominantTournament(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	scores := []float64{1, 2}
	for i := 0; i < 50; i++ {
		p1, p2 := selectParents(scores, 64, rng)
		assert.NotEqual(t, p1, p2)
	}
}

func TestSolveTwoIndividualsLargeTournament(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population = 2
	cfg.Elite = 0
	cfg.TournamentSize = 64
	cfg.Generations = 5
	s, err := New(cfg, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	w := cloud.RandomWorkload(10, 3, rand.New(rand.NewSource(8)))
	res, err := s.Solve(context.Background(), w)
	require.NoError(t, err)
	assert.NoError(t, cloud.ValidateAssignment(res.Assignment, w.N(), w.Workers))
	assert.Equal(t, 2+2*5, res.Evaluations)
}

func TestMutateReassignStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	p := cloud.RandomAssignment(20, 3, rng)
	for i := 0; i < 100; i++ {
		mutateReassign(p, 3, rng)
		require.NoError(t, cloud.ValidateAssignment(p, 20, 3))
	}
}

func TestSolveCancelled(t *testing.T) {
	s, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Solve(ctx, cloud.RandomWorkload(10, 3, rand.New(rand.NewSource(1))))
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, "context", res.Meta["stopped"])
	assert.Len(t, res.Assignment, 10)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Population = 1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Elite = cfg.Population
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MutationRate = 1.5
	assert.Error(t, cfg.Validate())

	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)
}
