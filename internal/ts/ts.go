// Package ts реализует табу-поиск по вектору назначений.
// Запрещается возвращать задачу на исполнителя, с которого её недавно сняли.
package ts

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cloudsched/internal/cloud"
	"cloudsched/internal/opt"
)

// Solver - структура реализации табу-поиска.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// move — ход окрестности: задача i переходит на исполнителя wi,
// при swap задача j одновременно переходит на wj.
type move struct {
	i, wi int
	j, wj int
}

func (mv move) isSwap() bool { return mv.j >= 0 }

// Solve минимизирует makespan + cost.
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

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerTask * n
	}

	curr := cloud.RandomAssignment(n, m, s.Rng)
	cand := make([]int, n)

	currCost := eval.MustObjectives(curr).Sum()
	evals := 1

	best := cloud.CloneAssignment(curr)
	bestCost := currCost

	tabu := newTabuList(maxInt(32, (s.Cfg.TabuTenure+s.Cfg.TabuTenureRand)*4))

	iter := 0
	for ; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return opt.Stopped(best, bestCost, evals, iter, start), err
		}

		// Лучший допустимый ход и запасной (лучший без учёта табу)
		chosen, chosenCost := move{i: -1}, math.Inf(1)
		fallback, fallbackCost := move{i: -1}, math.Inf(1)

		for k := 0; k < s.Cfg.NeighborsPerIter; k++ {
			mv, ok := s.sample(curr, m)
			if !ok {
				break
			}

			copy(cand, curr)
			apply(cand, mv)
			cost := eval.MustObjectives(cand).Sum()
			evals++

			if cost < fallbackCost {
				fallback, fallbackCost = mv, cost
			}

			// Критерий аспирации снимает запрет
			if isTabu(tabu, mv, iter) && cost >= bestCost {
				continue
			}
			if cost < chosenCost {
				chosen, chosenCost = mv, cost
			}
		}

		if chosen.i < 0 {
			chosen, chosenCost = fallback, fallbackCost
		}
		// Нет допустимых ходов — завершаем поиск
		if chosen.i < 0 {
			break
		}

		// Запрещается обратный ход
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(assignKey(chosen.i, curr[chosen.i]), iter+tenure)
		if chosen.isSwap() {
			tabu.Add(assignKey(chosen.j, curr[chosen.j]), iter+tenure)
		}

		apply(curr, chosen)
		currCost = chosenCost

		if currCost < bestCost {
			bestCost = currCost
			copy(best, curr)
		}
	}

	log.WithFields(log.Fields{
		"algorithm":   "ts",
		"evaluations": evals,
		"fitness":     bestCost,
	}).Debug("TS finished")

	return opt.Result{
		Assignment:  best,
		Fitness:     bestCost,
		Objectives:  eval.MustObjectives(best),
		Evaluations: evals,
		Iterations:  iter,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"tabu_tenure":        s.Cfg.TabuTenure,
			"tabu_tenure_rand":   s.Cfg.TabuTenureRand,
			"neighbors_per_iter": s.Cfg.NeighborsPerIter,
			"neighborhood":       string(s.Cfg.Neighborhood),
		},
	}, nil
}

// sample генерирует случайный ход, меняющий назначение.
// false — окрестность пуста.
func (s *Solver) sample(p []int, workers int) (move, bool) {
	n := len(p)
	if s.Cfg.Neighborhood == NeighborhoodSwap {
		if n < 2 {
			return move{}, false
		}
		i := s.Rng.Intn(n)
		j := s.Rng.Intn(n - 1)
		if j >= i {
			j++
		}
		return move{i: i, wi: p[j], j: j, wj: p[i]}, true
	}

	if workers < 2 {
		return move{}, false
	}
	i := s.Rng.Intn(n)
	to := s.Rng.Intn(workers - 1)
	if to >= p[i] {
		to++
	}
	return move{i: i, wi: to, j: -1}, true
}

func apply(p []int, mv move) {
	p[mv.i] = mv.wi
	if mv.isSwap() {
		p[mv.j] = mv.wj
	}
}

func isTabu(t *tabuList, mv move, iter int) bool {
	if t.IsTabu(assignKey(mv.i, mv.wi), iter) {
		return true
	}
	return mv.isSwap() && t.IsTabu(assignKey(mv.j, mv.wj), iter)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
