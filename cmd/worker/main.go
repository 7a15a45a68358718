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

	"cloudsched/internal/config"
	"cloudsched/internal/logging"
	"cloudsched/internal/worker"
)

var (
	version string
	app     = kingpin.New("cloudsched-worker", "Cloud task worker")

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
		"http-port", "Worker HTTP port (http_port override) (set $HTTP_PORT to override)").
		Envar("HTTP_PORT").
		Int()

	catalogSource = app.Flag(
		"catalog", "Catalog source: memory or mysql (catalog.source override)").
		Envar("CATALOG_SOURCE").
		String()

	mysqlHost = app.Flag(
		"mysql-host", "MySQL host (catalog.mysql.host override)").
		Envar("MYSQL_HOST").
		String()

	mysqlPassword = app.Flag(
		"mysql-password", "MySQL password (catalog.mysql.password override)").
		Envar("MYSQL_PASSWORD").
		String()
)

func getConfig() config.WorkerConfig {
	cfg, err := config.ReadWorker(*cfgFiles...)
	if err != nil {
		log.WithError(err).Fatal("Cannot read worker config")
	}
	if *httpPort != 0 {
		cfg.HTTPPort = *httpPort
	}
	if *catalogSource != "" {
		cfg.Catalog.Source = *catalogSource
	}
	if *mysqlHost != "" {
		cfg.Catalog.MySQL.Host = *mysqlHost
	}
	if *mysqlPassword != "" {
		cfg.Catalog.MySQL.Password = *mysqlPassword
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid worker config")
	}
	return cfg
}

func openCatalog(ctx context.Context, cfg config.CatalogConfig) (worker.Catalog, func()) {
	if cfg.Source == config.CatalogMySQL {
		db, err := cfg.MySQL.Connect(ctx)
		if err != nil {
			log.WithError(err).WithField("host", cfg.MySQL.Host).Fatal("Cannot connect to catalog database")
		}
		return worker.NewSQLCatalog(db), func() { db.Close() }
	}
	c := worker.RandomCatalog(cfg.Products, cfg.Users, rand.New(rand.NewSource(cfg.Seed)))
	return c, func() {}
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, closeCatalog := openCatalog(ctx, cfg.Catalog)
	defer closeCatalog()

	router := worker.NewRouter(worker.NewExecutor(catalog))
	router.GET(logging.LevelOverwrite, gin.WrapF(logging.LevelOverwriteHandler(initialLevel)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.HTTPPort,
			"catalog": cfg.Catalog.Source,
		}).Info("Worker listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down worker")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
