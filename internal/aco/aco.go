// Package aco реализует муравьиный алгоритм для распределения задач.
// Феромон лежит на парах (задача, исполнитель), эвристика предпочитает
// наименее загруженного исполнителя.
package aco

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

// Solver - структура реализации муравьиного алгоритма.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый ACO-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

	exec := make([]float64, n)
	for i, t := range w.Tasks {
		exec[i] = cloud.ExecTime(t.Weight)
	}

	// Матрица феромонов n x m
	tau := make([]float64, n*m)
	for i := range tau {
		tau[i] = s.Cfg.Tau0
	}

	c := &constructor{
		n: n, m: m,
		tau:   tau,
		exec:  exec,
		alpha: s.Cfg.Alpha,
		beta:  s.Cfg.Beta,
		k:     s.Cfg.CandidateK,
		rng:   s.Rng,

		load:       make([]float64, m),
		candidates: make([]int, m),
		weights:    make([]float64, m),
	}

	ant := make([]int, n)
	iterBest := make([]int, n)
	best := make([]int, n)
	bestCost := math.Inf(1)
	evals := 0

	iter := 0
	for ; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return opt.Stopped(best, bestCost, evals, iter, start), err
		}

		iterBestCost := math.Inf(1)
		for a := 0; a < s.Cfg.Ants; a++ {
			c.build(ant)
			cost := eval.MustObjectives(ant).Sum()
			evals++

			if cost < iterBestCost {
				iterBestCost = cost
				copy(iterBest, ant)
			}
			if cost < bestCost {
				bestCost = cost
				copy(best, ant)
			}
		}

		// Испарение феромона
		ev := 1.0 - s.Cfg.Rho
		for i := range tau {
			tau[i] *= ev
			if tau[i] < 1e-12 {
				tau[i] = 1e-12
			}
		}

		// Отложение только по лучшему решению итерации
		dep := s.Cfg.Q / iterBestCost
		for t, wk := range iterBest {
			tau[t*m+wk] += dep
		}
	}

	log.WithFields(log.Fields{
		"algorithm":   "aco",
		"evaluations": evals,
		"fitness":     bestCost,
	}).Debug("ACO finished")

	return opt.Result{
		Assignment:  best,
		Fitness:     bestCost,
		Objectives:  eval.MustObjectives(best),
		Evaluations: evals,
		Iterations:  iter,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"ants":        s.Cfg.Ants,
			"alpha":       s.Cfg.Alpha,
			"beta":        s.Cfg.Beta,
			"rho":         s.Cfg.Rho,
			"Q":           s.Cfg.Q,
			"tau0":        s.Cfg.Tau0,
			"candidate_k": s.Cfg.CandidateK,
		},
	}, nil
}

// constructor строит решения муравьёв на общих буферах.
type constructor struct {
	n, m        int
	tau         []float64
	exec        []float64
	alpha, beta float64
	k           int
	rng         *rand.Rand

	load       []float64
	candidates []int
	weights    []float64
}

// build назначает задачи по порядку; вес исполнителя
// tau^alpha * (1 / (load + exec))^beta.
func (c *constructor) build(out []int) {
	for i := range c.load {
		c.load[i] = 0
	}
	for t := 0; t < c.n; t++ {
		k := c.m
		for i := range c.candidates {
			c.candidates[i] = i
		}
		if c.k > 0 && c.k < c.m {
			k = c.k
			for i := 0; i < k; i++ {
				r := i + c.rng.Intn(c.m-i)
				c.candidates[i], c.candidates[r] = c.candidates[r], c.candidates[i]
			}
		}

		sumW := 0.0
		for i := 0; i < k; i++ {
			wk := c.candidates[i]
			eta := 1.0 / (c.load[wk] + c.exec[t])
			wgt := fastPow(c.tau[t*c.m+wk], c.alpha) * fastPow(eta, c.beta)
			c.weights[i] = wgt
			sumW += wgt
		}

		chosen := k - 1
		if sumW <= 0 {
			chosen = c.rng.Intn(k)
		} else {
			r := c.rng.Float64() * sumW
			acc := 0.0
			for i := 0; i < k; i++ {
				acc += c.weights[i]
				if r <= acc {
					chosen = i
					break
				}
			}
		}

		wk := c.candidates[chosen]
		out[t] = wk
		c.load[wk] += c.exec[t]
	}
}

// fastPow избегает math.Pow для частых степеней.
func fastPow(x, p float64) float64 {
	switch p {
	case 0:
		return 1.0
	case 1:
		return x
	case 2:
		return x * x
	}
	return math.Pow(x, p)
}
