package ga

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cloudsched/internal/cloud"
	"cloudsched/internal/opt"
)

// Solver — генетический алгоритм для распределения задач по исполнителям.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый GA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, w *cloud.Workload) (opt.Result, error) {
	start := time.Now()

	if err := w.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, errors.New("генератор случайных чисел не инициализирован (nil)")
	}

	eval, err := cloud.NewEvaluator(w)
	if err != nil {
		return opt.Result{}, err
	}

	n, m := w.N(), w.Workers
	popSize := s.Cfg.Population

	// Двумерный массив назначений на общем буфере
	makePop := func() [][]int {
		backing := make([]int, popSize*n)
		pop := make([][]int, popSize)
		for i := 0; i < popSize; i++ {
			pop[i] = backing[i*n : (i+1)*n]
		}
		return pop
	}

	// Две популяции: текущая (A) и следующая (B)
	popA := makePop()
	popB := makePop()
	scoresA := make([]float64, popSize)
	scoresB := make([]float64, popSize)

	for i := 0; i < popSize; i++ {
		cloud.FillRandom(popA[i], m, s.Rng)
		scoresA[i] = eval.MustScalar(popA[i])
	}
	evaluations := popSize

	best := make([]int, n)
	bestFitness := scoresA[0]
	copy(best, popA[0])
	for i := 1; i < popSize; i++ {
		if scoresA[i] < bestFitness {
			bestFitness = scoresA[i]
			copy(best, popA[i])
		}
	}

	// Буфер для второго потомка при нечётном числе свободных мест
	scratchChild := make([]int, n)

	idxs := make([]int, popSize)
	for i := range idxs {
		idxs[i] = i
	}

	for gen := 0; gen < s.Cfg.Generations; gen++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return opt.Stopped(best, bestFitness, evaluations, gen, start), err
		}

		sort.Slice(idxs, func(i, j int) bool {
			return scoresA[idxs[i]] < scoresA[idxs[j]]
		})

		write := 0

		// Элитизм
		for e := 0; e < s.Cfg.Elite; e++ {
			src := idxs[e]
			copy(popB[write], popA[src])
			scoresB[write] = scoresA[src]
			write++
		}

		for write < popSize {
			p1, p2 := selectParents(scoresA, s.Cfg.TournamentSize, s.Rng)

			child1 := popB[write]
			hasSecond := write+1 < popSize
			child2 := scratchChild
			if hasSecond {
				child2 = popB[write+1]
			}

			if s.Rng.Float64() < s.Cfg.CrossoverRate {
				uniformCrossover(popA[p1], popA[p2], child1, child2, s.Rng)
			} else {
				copy(child1, popA[p1])
				copy(child2, popA[p2])
			}

			if s.Rng.Float64() < s.Cfg.MutationRate {
				mutateReassign(child1, m, s.Rng)
			}
			if hasSecond && s.Rng.Float64() < s.Cfg.MutationRate {
				mutateReassign(child2, m, s.Rng)
			}

			f1 := eval.MustScalar(child1)
			scoresB[write] = f1
			evaluations++
			if f1 < bestFitness {
				bestFitness = f1
				copy(best, child1)
			}
			write++

			if hasSecond {
				f2 := eval.MustScalar(child2)
				scoresB[write] = f2
				evaluations++
				if f2 < bestFitness {
					bestFitness = f2
					copy(best, child2)
				}
				write++
			}
		}

		// Смена поколений
		popA, popB = popB, popA
		scoresA, scoresB = scoresB, scoresA
	}

	log.WithFields(log.Fields{
		"algorithm":   "ga",
		"evaluations": evaluations,
		"fitness":     bestFitness,
	}).Debug("GA finished")

	res := ToOptResult(
		best,
		bestFitness,
		evaluations,
		s.Cfg.Generations,
		map[string]any{
			"population":  s.Cfg.Population,
			"generations": s.Cfg.Generations,
			"elite":       s.Cfg.Elite,
		},
	)
	res.Objectives = eval.MustObjectives(best)
	res.Duration = time.Since(start)
	return res, nil
}
