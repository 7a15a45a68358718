// Package bench сравнивает оптимизаторы на сгенерированных нагрузках.
package bench

import (
	"context"
	"encoding/csv"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cloudsched/internal/cloud"
	"cloudsched/internal/opt"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) (opt.Optimizer, error)
}

type Case struct {
	Tasks        int
	Workers      int
	WorkloadSeed int64
}

type Record struct {
	Algo    string
	Tasks   int
	Workers int
	Runs    int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest float64
	MakespanMean float64
	MakespanStd  float64

	CostBest float64
	CostMean float64
	CostStd  float64

	BalanceMean float64
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = без ограничения
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	w := cloud.RandomWorkload(c.Tasks, c.Workers, randForSeed(c.WorkloadSeed))
	eval, err := cloud.NewEvaluator(w)
	if err != nil {
		return Record{}, err
	}

	makespans := make([]float64, 0, r.Runs)
	costs := make([]float64, 0, r.Runs)
	balances := make([]float64, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)

	for i := 0; i < r.Runs; i++ {
		op, err := algo.Factory(r.BaseSeed + int64(i))
		if err != nil {
			return Record{}, errors.Wrapf(err, "run %d: create optimizer", i)
		}

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, w)
		dur := time.Since(start)
		cancel()

		// Прерванный по таймауту запуск учитывается с лучшим найденным решением
		if err != nil && runCtx.Err() == nil {
			return Record{}, errors.Wrapf(err, "run %d: solve", i)
		}
		if err := cloud.ValidateAssignment(res.Assignment, w.N(), w.Workers); err != nil {
			return Record{}, errors.Wrapf(err, "run %d", i)
		}

		o := eval.MustObjectives(res.Assignment)
		makespans = append(makespans, o.Makespan)
		costs = append(costs, o.Cost)
		balances = append(balances, eval.MustBalance(res.Assignment))
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)

		log.WithFields(log.Fields{
			"algorithm": algo.Name,
			"run":       i,
			"makespan":  o.Makespan,
			"cost":      o.Cost,
		}).Debug("bench run finished")
	}

	ms := CalcStats(makespans)
	cs := CalcStats(costs)
	ts := CalcStats(timesMs)

	return Record{
		Algo:    algo.Name,
		Tasks:   c.Tasks,
		Workers: c.Workers,
		Runs:    r.Runs,

		TimeBestMs: ts.Best,
		TimeMeanMs: ts.Mean,
		TimeStdMs:  ts.Std,

		MakespanBest: ms.Best,
		MakespanMean: ms.Mean,
		MakespanStd:  ms.Std,

		CostBest: cs.Best,
		CostMean: cs.Mean,
		CostStd:  cs.Std,

		BalanceMean: CalcStats(balances).Mean,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	if d := dirOf(path); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"algo", "tasks", "workers", "runs",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std",
		"cost_best", "cost_mean", "cost_std",
		"balance_mean",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			itoa(r.Tasks),
			itoa(r.Workers),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			ftoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),

			ftoa(r.CostBest),
			ftoa(r.CostMean),
			ftoa(r.CostStd),

			ftoa(r.BalanceMean),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
