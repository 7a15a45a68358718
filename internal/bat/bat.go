package bat

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cloudsched/internal/cloud"
	"cloudsched/internal/opt"
)

// Solver — реализация алгоритма летучих мышей.
// Целевая функция — баланс количества задач по исполнителям (максимизация).
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый BA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// individual описывает одну летучую мышь.
type individual struct {
	position  []int
	fitness   float64
	loudness  float64
	pulseRate float64
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

	n := w.N()

	// Начальная популяция
	bats := make([]individual, s.Cfg.Population)
	for i := range bats {
		pos := cloud.RandomAssignment(n, w.Workers, s.Rng)
		bats[i] = individual{
			position:  pos,
			fitness:   eval.MustBalance(pos),
			loudness:  s.Cfg.InitialLoudness,
			pulseRate: s.Cfg.InitialPulseRate,
		}
	}
	evals := len(bats)

	// Глобально лучшее решение хранится отдельной копией
	best := cloud.CloneAssignment(bats[0].position)
	bestFitness := bats[0].fitness
	for i := 1; i < len(bats); i++ {
		if bats[i].fitness > bestFitness {
			bestFitness = bats[i].fitness
			copy(best, bats[i].position)
		}
	}
	initialBest := bestFitness

	cand := make([]int, n)

	for iter := 0; iter < s.Cfg.Iterations; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return opt.Stopped(best, bestFitness, evals, iter, start), err
		}

		for i := range bats {
			b := &bats[i]

			// Новая позиция: обмен двух случайных генов
			copy(cand, b.position)
			i1 := s.Rng.Intn(n)
			i2 := s.Rng.Intn(n)
			cand[i1], cand[i2] = cand[i2], cand[i1]

			// Локальный поиск вокруг глобально лучшего
			if s.Rng.Float64() > b.pulseRate {
				idx := s.Rng.Intn(n)
				cand[idx] = best[idx]
			}

			f := eval.MustBalance(cand)
			evals++

			// Решение принимается с вероятностью, равной громкости
			if s.Rng.Float64() < b.loudness && f > b.fitness {
				copy(b.position, cand)
				b.fitness = f

				b.loudness *= s.Cfg.Alpha
				b.pulseRate += s.Cfg.Gamma
				if b.pulseRate > 1 {
					b.pulseRate = 1
				}

				if f > bestFitness {
					bestFitness = f
					copy(best, b.position)
				}
			}
		}
	}

	log.WithFields(log.Fields{
		"algorithm":    "bat",
		"evaluations":  evals,
		"best_balance": bestFitness,
	}).Debug("Bat algorithm finished")

	return opt.Result{
		Assignment:  best,
		Fitness:     bestFitness,
		Objectives:  eval.MustObjectives(best),
		Evaluations: evals,
		Iterations:  s.Cfg.Iterations,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"population":   s.Cfg.Population,
			"alpha":        s.Cfg.Alpha,
			"gamma":        s.Cfg.Gamma,
			"initial_best": initialBest,
		},
	}, nil
}
