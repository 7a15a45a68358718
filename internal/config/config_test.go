package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/multierr"

	"cloudsched/internal/algo"
)

const _baseScheduler = `
algorithm: moics
tasks_file: tasks.json
workers:
  - http://192.168.56.11:31001
  - http://192.168.56.11:31002
http_port: 8080
optimizers:
  moics:
    population: 40
`

const _overrideScheduler = `
algorithm: pso
run_size: 100
dispatch_timeout: 30s
optimizers:
  pso:
    particles: 12
`

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	dir, err := ioutil.TempDir("", "cloudsched-config")
	suite.Require().NoError(err)
	suite.dir = dir
}

func (suite *ConfigTestSuite) TearDownTest() {
	os.RemoveAll(suite.dir)
}

func (suite *ConfigTestSuite) write(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(ioutil.WriteFile(path, []byte(content), 0o644))
	return path
}

func (suite *ConfigTestSuite) TestLoadSchedulerMergesFiles() {
	base := suite.write("base.yaml", _baseScheduler)
	over := suite.write("override.yaml", _overrideScheduler)

	cfg, err := LoadScheduler(base, over)
	suite.Require().NoError(err)

	suite.Equal("pso", cfg.Algorithm)
	suite.Equal("tasks.json", cfg.TasksFile)
	suite.Len(cfg.Workers, 2)
	suite.Equal(100, cfg.RunSize)
	suite.Equal(30*time.Second, cfg.DispatchTimeout)
	suite.Equal(12, cfg.Optimizers.PSO.Particles)
	suite.Equal(40, cfg.Optimizers.MOICS.Population)
	// untouched sections keep their defaults
	suite.Equal(algo.DefaultConfig().CS, cfg.Optimizers.CS)
	suite.Equal(algo.DefaultConfig().PSO.Iterations, cfg.Optimizers.PSO.Iterations)
	suite.Equal("cloudsched", cfg.Metrics.Prefix)
}

func (suite *ConfigTestSuite) TestParseValidationError() {
	path := suite.write("bad.yaml", "algorithm: cs\nworkers: []\n")
	cfg := DefaultSchedulerConfig()
	err := Parse(&cfg, path)
	suite.Require().Error(err)

	verr, ok := err.(ValidationError)
	suite.Require().True(ok)
	suite.Error(verr.ErrForField("TasksFile"))
	suite.Error(verr.ErrForField("Workers"))
	suite.Contains(verr.Error(), "validation failed")
}

func (suite *ConfigTestSuite) TestParseErrors() {
	cfg := DefaultSchedulerConfig()
	suite.Error(Parse(&cfg))
	suite.Error(Parse(&cfg, filepath.Join(suite.dir, "missing.yaml")))
	suite.Error(Parse(&cfg, suite.write("broken.yaml", "workers: [a")))
}

func (suite *ConfigTestSuite) TestLoadWorker() {
	cfg, err := LoadWorker(suite.write("worker.yaml", "http_port: 31001\n"))
	suite.Require().NoError(err)
	suite.Equal(31001, cfg.HTTPPort)
	suite.Equal(CatalogMemory, cfg.Catalog.Source)

	_, err = LoadWorker(suite.write("mysql.yaml", "catalog:\n  source: mysql\n"))
	suite.Error(err)

	cfg, err = LoadWorker(suite.write("mysql-ok.yaml", `
catalog:
  source: mysql
  mysql:
    host: db
    port: 3306
    database: cloud_tasks
`))
	suite.Require().NoError(err)
	suite.Equal("db", cfg.Catalog.MySQL.Host)
}

func (suite *ConfigTestSuite) TestLoadMonitor() {
	_, err := LoadMonitor(suite.write("empty.yaml", "stat_path: /proc/stat\n"))
	suite.Error(err)

	cfg, err := LoadMonitor(suite.write("monitor.yaml", `
monitor:
  broker_url: http://192.168.56.10:8080/cpu-usage-report
  host: host-1
  interval: 2s
`))
	suite.Require().NoError(err)
	suite.Equal("host-1", cfg.Monitor.Host)
	suite.Equal(2*time.Second, cfg.Monitor.Interval)
}

func TestSchedulerValidate(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	cfg.TasksFile = "tasks.json"
	cfg.Workers = []string{"http://a:1", "http://b:1"}
	require.NoError(t, cfg.Validate())

	cfg.Algorithm = "hill"
	cfg.Workers = []string{"http://a:1", "http://a:1", "a:1"}
	cfg.Optimizers.CS.Nests = 0
	cfg.RunSize = -1
	err := cfg.Validate()
	require.Error(t, err)
	// run_size tag, algorithm, cs, duplicate, scheme
	assert.Len(t, multierr.Errors(err), 5)
}

func TestValidateWorkers(t *testing.T) {
	assert.Error(t, validateWorkers(nil))
	assert.NoError(t, validateWorkers([]string{"http://10.0.0.1:31001", "https://w"}))
	assert.Error(t, validateWorkers([]string{"ftp://w"}))
}

func TestLoadWithoutFilesUsesDefaults(t *testing.T) {
	w, err := LoadWorker()
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkerConfig(), w)

	// defaults alone lack the tasks file and workers
	_, err = LoadScheduler()
	assert.Error(t, err)

	cfg, err := ReadScheduler()
	require.NoError(t, err)
	cfg.TasksFile = "tasks.json"
	cfg.Workers = []string{"http://w:3000"}
	assert.NoError(t, cfg.Validate())
}

func TestMonitorValidate(t *testing.T) {
	cfg, err := ReadMonitor()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	cfg.Monitor.BrokerURL = "http://broker:8080/cpu-usage-report"
	cfg.Monitor.Host = "h1"
	assert.NoError(t, cfg.Validate())

	cfg.Monitor.Interval = 0
	assert.Error(t, cfg.Validate())
}

func TestShippedConfigs(t *testing.T) {
	s, err := LoadScheduler("../../config/scheduler.yaml")
	require.NoError(t, err)
	assert.Equal(t, "moics", s.Algorithm)
	assert.Len(t, s.Workers, 3)
	assert.Equal(t, 60*time.Second, s.DispatchTimeout)

	w, err := LoadWorker("../../config/worker.yaml")
	require.NoError(t, err)
	assert.Equal(t, 31001, w.HTTPPort)
	assert.Equal(t, 3306, w.Catalog.MySQL.Port)

	m, err := ReadMonitor("../../config/monitor.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/proc/stat", m.StatPath)
	// host comes from the command line
	assert.Error(t, m.Validate())
}
