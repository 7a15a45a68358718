package cs

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

// Solver — реализация поиска кукушки.
// Целевая функция — суммарное время выполнения плюс стоимость (минимизация).
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый CS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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
	size := s.Cfg.Nests

	// Инициализация гнёзд
	nests := make([][]int, size)
	fitness := make([]float64, size)
	for i := range nests {
		nests[i] = cloud.RandomAssignment(n, m, s.Rng)
		fitness[i] = eval.MustScalar(nests[i])
	}
	evals := size

	best := make([]int, n)
	bestFitness := math.Inf(1)
	for i := range nests {
		if fitness[i] < bestFitness {
			bestFitness = fitness[i]
			copy(best, nests[i])
		}
	}
	initialBest := bestFitness

	cand := make([]int, n)

	for iter := 0; iter < s.Cfg.Iterations; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return opt.Stopped(best, bestFitness, evals, iter, start), err
		}

		// Полёт Леви для каждого гнезда
		for i := range nests {
			levyFlight(nests[i], cand, m, s.Rng)
			f := eval.MustScalar(cand)
			evals++

			if f < fitness[i] {
				nests[i], cand = cand, nests[i]
				fitness[i] = f

				if f < bestFitness {
					bestFitness = f
					copy(best, nests[i])
				}
			}
		}

		// Обнаружение и замена гнёзд случайными; лучшее решение
		// обновляется только полётом Леви
		var discovered int
		cand, discovered = s.abandon(nests, fitness, cand, m, eval.MustScalar)
		evals += discovered
	}

	log.WithFields(log.Fields{
		"algorithm":    "cs",
		"evaluations":  evals,
		"best_fitness": bestFitness,
	}).Debug("Cuckoo search finished")

	return opt.Result{
		Assignment:  best,
		Fitness:     bestFitness,
		Objectives:  eval.MustObjectives(best),
		Evaluations: evals,
		Iterations:  s.Cfg.Iterations,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"nests":          size,
			"discovery_rate": s.Cfg.DiscoveryRate,
			"initial_best":   initialBest,
		},
	}, nil
}

// abandon с вероятностью DiscoveryRate заменяет гнездо случайным
// назначением, если оно строго лучше. Возвращает буфер кандидата
// и число вычислений score.
func (s *Solver) abandon(nests [][]int, fitness []float64, cand []int, workers int, score func([]int) float64) ([]int, int) {
	evals := 0
	for i := range nests {
		if s.Rng.Float64() >= s.Cfg.DiscoveryRate {
			continue
		}
		cloud.FillRandom(cand, workers, s.Rng)
		f := score(cand)
		evals++

		if f < fitness[i] {
			nests[i], cand = cand, nests[i]
			fitness[i] = f
		}
	}
	return cand, evals
}

// levyFlight сдвигает каждый ген на округлённый шаг Леви со случайным знаком.
func levyFlight(src, dst []int, workers int, rng *rand.Rand) {
	for i, gene := range src {
		step := cloud.LevyStep(rng) * cloud.RandomSign(rng)
		dst[i] = cloud.ClampWorker(float64(gene)+math.Round(step), workers)
	}
}
