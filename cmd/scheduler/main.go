package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"cloudsched/internal/algo"
	"cloudsched/internal/cloud"
	"cloudsched/internal/config"
	"cloudsched/internal/logging"
	"cloudsched/internal/metrics"
	"cloudsched/internal/scheduler"
	"cloudsched/internal/server"
	"cloudsched/internal/transport"
)

var (
	version string
	app     = kingpin.New("cloudsched-scheduler", "Cloud task scheduler")

	debug = app.Flag(
		"debug", "enable debug logging").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	cfgFiles = app.Flag(
		"config",
		"YAML config files (can be provided multiple times to merge configs)").
		Short('c').
		ExistingFiles()

	httpPort = app.Flag(
		"http-port", "Scheduler HTTP port (http_port override) (set $HTTP_PORT to override)").
		Envar("HTTP_PORT").
		Int()

	algorithm = app.Flag(
		"algorithm", "Optimizer: ba, cs, pso, moics, ga, sa, ts or aco (algorithm override)").
		Envar("ALGORITHM").
		String()

	tasksFile = app.Flag(
		"tasks", "JSON or YAML task list (tasks_file override)").
		Envar("TASKS_FILE").
		String()

	workers = app.Flag(
		"worker", "Worker base URL, repeat in assignment index order (workers override)").
		Envar("WORKERS").
		Strings()

	seed = app.Flag(
		"seed", "Optimizer random seed (seed override)").
		Envar("SEED").
		Int64()

	runSize = app.Flag(
		"run-size", "Completed tasks that end a run (run_size override)").
		Envar("RUN_SIZE").
		Int()

	reportFile = app.Flag(
		"report-file", "Append run reports as JSON lines to this file").
		Envar("REPORT_FILE").
		String()
)

func getConfig() config.SchedulerConfig {
	cfg, err := config.ReadScheduler(*cfgFiles...)
	if err != nil {
		log.WithError(err).Fatal("Cannot read scheduler config")
	}
	if *httpPort != 0 {
		cfg.HTTPPort = *httpPort
	}
	if *algorithm != "" {
		cfg.Algorithm = *algorithm
	}
	if *tasksFile != "" {
		cfg.TasksFile = *tasksFile
	}
	if len(*workers) > 0 {
		cfg.Workers = *workers
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *runSize != 0 {
		cfg.RunSize = *runSize
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid scheduler config")
	}
	return cfg
}

func main() {
	app.Version(version)
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	initialLevel := logging.Setup(app.Name, *debug)
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := getConfig()
	log.WithField("config", cfg).Info("Loaded scheduler configuration")

	tasks, err := cloud.LoadTasks(cfg.TasksFile)
	if err != nil {
		log.WithError(err).Fatal("Cannot load tasks")
	}

	name, err := algo.ParseName(cfg.Algorithm)
	if err != nil {
		log.WithError(err).Fatal("Unknown algorithm")
	}
	optimizer, err := algo.New(name, cfg.Optimizers, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		log.WithError(err).Fatal("Cannot create optimizer")
	}

	rootScope, scopeCloser, metricsHandler := metrics.InitMetricScope(cfg.Metrics)
	defer scopeCloser.Close()
	rootScope.Counter("boot").Inc(1)

	var reporter scheduler.Reporter
	if *reportFile != "" {
		reporter = scheduler.NewFileReporter(*reportFile)
	}

	sched, err := scheduler.New(
		tasks,
		cfg.Workers,
		optimizer,
		transport.NewClient(transport.WithTimeout(cfg.DispatchTimeout)),
		scheduler.Options{
			Algorithm: string(name),
			RunSize:   cfg.RunSize,
			Reporter:  reporter,
			Scope:     rootScope.SubScope("scheduler"),
		},
	)
	if err != nil {
		log.WithError(err).Fatal("Cannot create scheduler")
	}

	var opts []server.Option
	if metricsHandler != nil {
		opts = append(opts, server.WithMetricsHandler(metricsHandler))
	}
	router := server.New(sched, opts...).Router()
	router.GET(logging.LevelOverwrite, gin.WrapF(logging.LevelOverwriteHandler(initialLevel)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(log.Fields{
			"port":      cfg.HTTPPort,
			"algorithm": name,
			"tasks":     len(tasks),
			"workers":   len(cfg.Workers),
		}).Info("Scheduler listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down scheduler")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
