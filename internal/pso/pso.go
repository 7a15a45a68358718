package pso

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

// Solver - структура реализации алгоритма роя частиц
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый PSO-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// particle описывает одну частицу роя.
type particle struct {
	// pos — назначение задач исполнителям
	pos []int
	// vel — скорость частицы
	vel []float64

	// pBestPos — лучшая позиция частицы за всё время
	pBestPos []int
	// pBestCost — значение целевой функции в pBestPos, NaN пока не задано
	pBestCost float64
}

// evaluate считает целевую функцию и обновляет личный рекорд.
func (p *particle) evaluate(eval *cloud.Evaluator) float64 {
	cost := eval.MustScalar(p.pos)
	if math.IsNaN(p.pBestCost) || cost < p.pBestCost {
		p.pBestCost = cost
		copy(p.pBestPos, p.pos)
	}
	return cost
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, w *cloud.Workload) (opt.Result, error) {
	start := time.Now()

	// Валидация конфигурации
	if err := w.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, errors.New("генератор случайных чисел не инициализирован (nil)")
	}

	// Оценка целевой функции
	eval, err := cloud.NewEvaluator(w)
	if err != nil {
		return opt.Result{}, err
	}

	n, m := w.N(), w.Workers
	vMax := float64(m) * s.Cfg.VMaxFactor

	// Случайная инициализация позиций и скоростей частиц
	ps := make([]particle, s.Cfg.Particles)
	for i := range ps {
		ps[i] = particle{
			pos:       cloud.RandomAssignment(n, m, s.Rng),
			vel:       make([]float64, n),
			pBestPos:  make([]int, n),
			pBestCost: math.NaN(),
		}
		for d := 0; d < n; d++ {
			ps[i].vel[d] = (s.Rng.Float64() - 0.5) * float64(m)
		}
		copy(ps[i].pBestPos, ps[i].pos)
	}

	// Вычисление глобально лучшего решения
	gBestPos := make([]int, n)
	gBestCost := math.Inf(1)
	for i := range ps {
		cost := ps[i].evaluate(eval)
		if cost < gBestCost {
			gBestCost = cost
			copy(gBestPos, ps[i].pos)
		}
	}
	evals := len(ps)
	initialBest := gBestCost

	w0, c1, c2 := s.Cfg.W, s.Cfg.C1, s.Cfg.C2

	// Основной цикл
	for iter := 0; iter < s.Cfg.Iterations; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			return opt.Stopped(gBestPos, gBestCost, evals, iter, start), err
		}

		for i := range ps {
			p := &ps[i]

			// Обновление скорости и позиции частицы
			for d := 0; d < n; d++ {
				r1 := s.Rng.Float64()
				r2 := s.Rng.Float64()

				x := float64(p.pos[d])
				v := w0*p.vel[d] +
					c1*r1*(float64(p.pBestPos[d])-x) +
					c2*r2*(float64(gBestPos[d])-x)

				// Ограничение скорости
				if v > vMax {
					v = vMax
				} else if v < -vMax {
					v = -vMax
				}
				p.vel[d] = v

				p.pos[d] = cloud.ClampWorker(math.Round(x+v), m)
			}

			// Оценка нового положения частицы
			cost := p.evaluate(eval)
			evals++

			// Обновление глобального лучшего решения
			if cost < gBestCost {
				gBestCost = cost
				copy(gBestPos, p.pos)
			}
		}
	}

	log.WithFields(log.Fields{
		"algorithm":    "pso",
		"evaluations":  evals,
		"best_fitness": gBestCost,
	}).Debug("Particle swarm finished")

	return opt.Result{
		Assignment:  gBestPos,
		Fitness:     gBestCost,
		Objectives:  eval.MustObjectives(gBestPos),
		Evaluations: evals,
		Iterations:  s.Cfg.Iterations,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"particles":    s.Cfg.Particles,
			"w":            w0,
			"c1":           c1,
			"c2":           c2,
			"vmax":         vMax,
			"initial_best": initialBest,
		},
	}, nil
}
