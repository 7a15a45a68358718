package moics

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cloudsched/internal/cloud"
	"cloudsched/internal/opt"
)

// Solver — многокритериальный поиск кукушки с обучением на основе
// противоположностей (MOICS-OBL). Критерии: makespan и стоимость.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
}

// New возвращает новый MOICS-OBL солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

	// Начальная популяция
	pop := make([]Individual, s.Cfg.Population)
	for i := range pop {
		pop[i] = Individual{
			Chromosome: cloud.RandomAssignment(n, m, s.Rng),
			Fitness:    cloud.Unevaluated(),
		}
		pop[i].Fitness = eval.MustObjectives(pop[i].Chromosome)
	}
	evals := len(pop)

	abandon := int(math.Floor(s.Cfg.Pa * float64(len(pop))))
	cand := make([]int, n)

	for iter := 0; iter < s.Cfg.Iterations; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			best := pickLowestSum(pop)
			res := opt.Stopped(best.Chromosome, best.Fitness.Sum(), evals, iter, start)
			res.Objectives = best.Fitness
			return res, err
		}

		// 1. Полёт Леви, принятие по сумме критериев
		for i := range pop {
			levyFlight(pop[i].Chromosome, cand, m, s.Rng)
			f := eval.MustObjectives(cand)
			evals++
			if f.Sum() < pop[i].Fitness.Sum() {
				pop[i].Chromosome, cand = cand, pop[i].Chromosome
				pop[i].Fitness = f
			}
		}

		// 2. Мутация худших гнёзд
		sortBySum(pop)
		for i := len(pop) - abandon; i < len(pop); i++ {
			gene := s.Rng.Intn(n)
			pop[i].Chromosome[gene] = s.Rng.Intn(m)
			pop[i].Fitness = cloud.Unevaluated()
		}

		// 3. Переоценка всей популяции
		for i := range pop {
			pop[i].Fitness = eval.MustObjectives(pop[i].Chromosome)
		}
		evals += len(pop)

		// 4. Обучение на основе противоположностей
		for i := range pop {
			opposite(pop[i].Chromosome, cand, m)
			f := eval.MustObjectives(cand)
			evals++
			if f.Sum() < pop[i].Fitness.Sum() {
				pop[i].Chromosome, cand = cand, pop[i].Chromosome
				pop[i].Fitness = f
			}
		}
	}

	front := ParetoFront(pop)
	best := pickLowestSum(front)

	log.WithFields(log.Fields{
		"algorithm":   "moics-obl",
		"evaluations": evals,
		"front_size":  len(front),
		"makespan":    best.Fitness.Makespan,
		"cost":        best.Fitness.Cost,
	}).Debug("MOICS-OBL finished")

	return opt.Result{
		Assignment:  best.Chromosome,
		Fitness:     best.Fitness.Sum(),
		Objectives:  best.Fitness,
		Evaluations: evals,
		Iterations:  s.Cfg.Iterations,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"population": s.Cfg.Population,
			"pa":         s.Cfg.Pa,
			"front_size": len(front),
			"front":      front,
		},
	}, nil
}

// levyFlight сдвигает каждый ген на округлённый шаг Леви со случайным знаком.
func levyFlight(src, dst []int, workers int, rng *rand.Rand) {
	for i, gene := range src {
		step := math.Round(cloud.LevyStep(rng))
		dst[i] = cloud.ClampWorker(float64(gene)+step*cloud.RandomSign(rng), workers)
	}
}

// opposite отражает хромосому относительно середины диапазона [0, workers-1].
func opposite(src, dst []int, workers int) {
	lo, hi := 0, workers-1
	for i, gene := range src {
		dst[i] = lo + hi - gene
	}
}

// sortBySum упорядочивает популяцию по возрастанию суммы критериев.
func sortBySum(pop []Individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].Fitness.Sum() < pop[j].Fitness.Sum()
	})
}
