package config

import (
	"net/url"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"cloudsched/internal/algo"
	"cloudsched/internal/metrics"
	"cloudsched/internal/monitor"
	"cloudsched/internal/worker"
)

// SchedulerConfig is the configuration of the scheduler service.
type SchedulerConfig struct {
	Algorithm string   `yaml:"algorithm" validate:"nonzero"`
	TasksFile string   `yaml:"tasks_file" validate:"nonzero"`
	Workers   []string `yaml:"workers" validate:"min=1"`
	// RunSize is the number of completed tasks that ends a run; 0 means all.
	RunSize  int   `yaml:"run_size" validate:"min=0"`
	HTTPPort int   `yaml:"http_port" validate:"nonzero"`
	Seed     int64 `yaml:"seed"`

	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`

	Metrics    metrics.Config `yaml:"metrics"`
	Optimizers algo.Config   `yaml:"optimizers"`
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Algorithm: string(algo.MOICS),
		HTTPPort:  8080,
		Seed:      1,
		Metrics: metrics.Config{
			Prefix:         "cloudsched",
			ReportInterval: time.Second,
			Prometheus:     true,
		},
		Optimizers: algo.DefaultConfig(),
	}
}

// Validate checks the struct tags and what they cannot express.
func (c SchedulerConfig) Validate() error {
	err := validate(c)
	if _, e := algo.ParseName(c.Algorithm); e != nil {
		err = multierr.Append(err, e)
	}
	err = multierr.Append(err, c.Optimizers.Validate())
	err = multierr.Append(err, validateWorkers(c.Workers))
	if c.DispatchTimeout < 0 {
		err = multierr.Append(err, errors.Errorf("dispatch_timeout must be >= 0 (got %s)", c.DispatchTimeout))
	}
	return err
}

// validateWorkers requires a non-empty list of distinct http(s) URLs.
func validateWorkers(workers []string) error {
	if len(workers) == 0 {
		return errors.New("at least one worker is required")
	}
	var err error
	seen := mapset.NewThreadUnsafeSet()
	for _, w := range workers {
		if !seen.Add(w) {
			err = multierr.Append(err, errors.Errorf("duplicate worker %q", w))
			continue
		}
		u, e := url.Parse(w)
		if e != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			err = multierr.Append(err, errors.Errorf("worker %q is not an http(s) URL", w))
		}
	}
	return err
}

// load merges files over cfg. No files leave cfg untouched.
func load(cfg interface{}, files []string) error {
	if len(files) == 0 {
		return nil
	}
	return merge(cfg, files)
}

// ReadScheduler merges files over the defaults without validating, so
// that command line overrides can be applied before Validate.
func ReadScheduler(files ...string) (SchedulerConfig, error) {
	cfg := DefaultSchedulerConfig()
	return cfg, load(&cfg, files)
}

// LoadScheduler reads files over the defaults and validates the result.
func LoadScheduler(files ...string) (SchedulerConfig, error) {
	cfg, err := ReadScheduler(files...)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Catalog sources of the worker.
const (
	CatalogMemory = "memory"
	CatalogMySQL  = "mysql"
)

// CatalogConfig selects where the worker reads products and users.
type CatalogConfig struct {
	Source string `yaml:"source"`
	// Products and Users size the generated in-memory catalog.
	Products int             `yaml:"products"`
	Users    int             `yaml:"users"`
	Seed     int64           `yaml:"seed"`
	MySQL    worker.DBConfig `yaml:"mysql"`
}

// WorkerConfig is the configuration of a worker service.
type WorkerConfig struct {
	HTTPPort int           `yaml:"http_port" validate:"nonzero"`
	Catalog  CatalogConfig `yaml:"catalog"`
}

func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		HTTPPort: 3000,
		Catalog: CatalogConfig{
			Source:   CatalogMemory,
			Products: 10000,
			Users:    10000,
			Seed:     1,
		},
	}
}

func (c WorkerConfig) Validate() error {
	if err := validate(c); err != nil {
		return err
	}
	switch c.Catalog.Source {
	case CatalogMemory:
		if c.Catalog.Products <= 0 || c.Catalog.Users <= 0 {
			return errors.Errorf("memory catalog needs products and users > 0 (got %d, %d)",
				c.Catalog.Products, c.Catalog.Users)
		}
	case CatalogMySQL:
		m := c.Catalog.MySQL
		if m.Host == "" || m.Port == 0 || m.Database == "" {
			return errors.New("mysql catalog needs host, port and database")
		}
	default:
		return errors.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	return nil
}

// ReadWorker merges files over the defaults without validating.
func ReadWorker(files ...string) (WorkerConfig, error) {
	cfg := DefaultWorkerConfig()
	return cfg, load(&cfg, files)
}

// LoadWorker reads files over the defaults and validates the result.
func LoadWorker(files ...string) (WorkerConfig, error) {
	cfg, err := ReadWorker(files...)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// MonitorConfig is the configuration of the CPU monitor.
type MonitorConfig struct {
	Monitor monitor.Config `yaml:"monitor"`
	// StatPath overrides /proc/stat.
	StatPath string `yaml:"stat_path"`
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Monitor:  monitor.Config{Interval: time.Second},
		StatPath: "/proc/stat",
	}
}

func (c MonitorConfig) Validate() error {
	if err := validate(c); err != nil {
		return err
	}
	if c.Monitor.Interval <= 0 {
		return errors.Errorf("monitor.interval must be > 0 (got %s)", c.Monitor.Interval)
	}
	return nil
}

// ReadMonitor merges files over the defaults without validating.
func ReadMonitor(files ...string) (MonitorConfig, error) {
	cfg := DefaultMonitorConfig()
	return cfg, load(&cfg, files)
}

// LoadMonitor reads files over the defaults and validates the result.
func LoadMonitor(files ...string) (MonitorConfig, error) {
	cfg, err := ReadMonitor(files...)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
