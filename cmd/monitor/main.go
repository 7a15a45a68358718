package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"cloudsched/internal/config"
	"cloudsched/internal/logging"
	"cloudsched/internal/monitor"
)

var (
	version string
	app     = kingpin.New("cloudsched-monitor", "Host CPU usage reporter")

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

	broker = app.Flag(
		"broker", "Scheduler CPU report URL (monitor.broker_url override)").
		Envar("BROKER_URL").
		String()

	host = app.Flag(
		"host", "Host identifier sent with every report (monitor.host override)").
		Envar("HOST_ID").
		String()

	interval = app.Flag(
		"interval", "Sampling interval (monitor.interval override)").
		Envar("REPORT_INTERVAL").
		Duration()
)

func getConfig() config.MonitorConfig {
	cfg, err := config.ReadMonitor(*cfgFiles...)
	if err != nil {
		log.WithError(err).Fatal("Cannot read monitor config")
	}
	if *broker != "" {
		cfg.Monitor.BrokerURL = *broker
	}
	if *host != "" {
		cfg.Monitor.Host = *host
	} else if cfg.Monitor.Host == "" {
		cfg.Monitor.Host, _ = os.Hostname()
	}
	if *interval != 0 {
		cfg.Monitor.Interval = *interval
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid monitor config")
	}
	return cfg
}

func main() {
	app.Version(version)
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))
	logging.Setup(app.Name, *debug)

	cfg := getConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := monitor.NewReporter(cfg.Monitor, &monitor.ProcStatSampler{Path: cfg.StatPath})
	if err := r.Run(ctx); err != nil && err != context.Canceled {
		log.WithError(err).Fatal("CPU monitor failed")
	}
	log.WithFields(log.Fields{
		"sent":   r.Sent(),
		"failed": r.Failed(),
	}).Info("CPU monitor stopped")
}
