package sa

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

// Solver - структура реализации алгоритма имитации отжига
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerTask * n
	}

	// Текущее и кандидатное решения
	curr := cloud.RandomAssignment(n, m, s.Rng)
	cand := make([]int, n)

	currCost := eval.MustScalar(curr)
	bestCost := currCost
	best := cloud.CloneAssignment(curr)

	evals := 1
	T := s.Cfg.InitialTemp

	iter := 0
	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := opt.Stopped(best, bestCost, evals, iter, start)
			res.Meta["T"] = T
			return res, err
		}

		copy(cand, curr)
		switch s.Cfg.Neighborhood {
		case NeighborhoodSwap:
			neighborSwap(cand, s.Rng)
		default:
			neighborReassign(cand, m, s.Rng)
		}

		candCost := eval.MustScalar(cand)
		evals++

		delta := candCost - currCost
		accept := delta <= 0
		if !accept {
			// Критерий Метрополиса
			accept = s.Rng.Float64() < math.Exp(-delta/T)
		}

		if accept {
			curr, cand = cand, curr
			currCost = candCost

			if currCost < bestCost {
				bestCost = currCost
				copy(best, curr)
			}
		}

		// Охлаждение
		T *= s.Cfg.Alpha
	}

	log.WithFields(log.Fields{
		"algorithm":   "sa",
		"evaluations": evals,
		"final_temp":  T,
		"fitness":     bestCost,
	}).Debug("SA finished")

	return opt.Result{
		Assignment:  best,
		Fitness:     bestCost,
		Objectives:  eval.MustObjectives(best),
		Evaluations: evals,
		Iterations:  iter,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"initial_temp": s.Cfg.InitialTemp,
			"final_temp":   s.Cfg.FinalTemp,
			"alpha":        s.Cfg.Alpha,
			"neighborhood": string(s.Cfg.Neighborhood),
		},
	}, nil
}

// neighborReassign переносит случайную задачу на другого исполнителя.
func neighborReassign(p []int, workers int, rng *rand.Rand) {
	if workers < 2 {
		return
	}
	i := rng.Intn(len(p))
	w := rng.Intn(workers - 1)
	if w >= p[i] {
		w++
	}
	p[i] = w
}

// neighborSwap меняет местами исполнителей двух случайных задач.
func neighborSwap(p []int, rng *rand.Rand) {
	if len(p) < 2 {
		return
	}
	i := rng.Intn(len(p))
	j := rng.Intn(len(p) - 1)
	if j >= i {
		j++
	}
	p[i], p[j] = p[j], p[i]
}
