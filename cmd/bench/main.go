package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"cloudsched/internal/algo"
	"cloudsched/internal/bench"
	"cloudsched/internal/config"
	"cloudsched/internal/logging"
)

var (
	app = kingpin.New("cloudsched-bench", "Сравнение алгоритмов распределения задач")

	debug = app.Flag("debug", "подробный вывод").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	cfgFiles = app.Flag("config",
		"YAML с параметрами алгоритмов (можно указать несколько раз)").
		Short('c').
		ExistingFiles()

	out = app.Flag("out", "путь к выходному CSV-файлу").
		Default("artifacts/results.csv").
		String()

	pairs = app.Flag("pairs", "конфигурации: количество задач x количество исполнителей (через запятую)").
		Default("20x3,50x5,100x10").
		String()

	algos = app.Flag("algos", "список алгоритмов через запятую").
		Default("ba,cs,pso,moics,ga,sa,ts,aco").
		String()

	runs = app.Flag("runs", "количество запусков каждого алгоритма (с разными сидами)").
		Default("30").
		Int()

	baseSeed = app.Flag("seed", "базовый сид для запусков алгоритмов").
		Default("1000").
		Int64()

	workloadSeed = app.Flag("workload-seed", "базовый сид генерации нагрузки (фиксирован для конфигурации)").
		Default("777").
		Int64()

	perRunTO = app.Flag("per-run-timeout", "таймаут одного запуска; 0 — без ограничения").
		Default("0s").
		Duration()
)

func main() {
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))
	logging.Setup(app.Name, *debug)

	cfg := algo.DefaultConfig()
	if len(*cfgFiles) > 0 {
		if err := config.Parse(&cfg, *cfgFiles...); err != nil {
			log.WithError(err).Fatal("Cannot parse optimizer config")
		}
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid optimizer config")
	}

	cases, err := bench.ParseCases(*pairs, *workloadSeed)
	if err != nil {
		log.WithError(err).Fatal("Invalid --pairs")
	}

	var selected []bench.Algorithm
	for _, a := range bench.SplitCSV(*algos) {
		name, err := algo.ParseName(a)
		if err != nil {
			log.WithError(err).Fatal("Invalid --algos")
		}
		f, err := algo.Factory(name, cfg)
		if err != nil {
			log.WithError(err).Fatal("Cannot build optimizer factory")
		}
		selected = append(selected, bench.Algorithm{Name: string(name), Factory: f})
	}

	runner := bench.Runner{
		Runs:          *runs,
		BaseSeed:      *baseSeed,
		PerRunTimeout: *perRunTO,
	}

	ctx := context.Background()
	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			fmt.Printf("Запущен алгоритм %s; %d задач %d исполнителей (общее кол-во запусков=%d)...\n",
				a.Name, c.Tasks, c.Workers, runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				log.WithError(err).WithField("algorithm", a.Name).Fatal("Benchmark failed")
			}
			records = append(records, rec)

			fmt.Printf("  makespan: лучшее=%.2f среднее=%.2f ст.откл.=%.2f | стоимость: лучшее=%.2f среднее=%.2f | время: среднее=%.2fms ст.откл.=%.2fms\n",
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.CostBest, rec.CostMean,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		log.WithError(err).Fatal("Cannot write CSV")
	}
	fmt.Println("Saved:", *out)
}
