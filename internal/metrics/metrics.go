// Package metrics builds the tally root scope shared by the binaries.
package metrics

import (
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"
	tallyprom "github.com/uber-go/tally/v4/prometheus"
)

// DefaultFlushInterval is used when the config leaves it unset.
const DefaultFlushInterval = time.Second

// Config selects the metrics backend.
type Config struct {
	Prefix         string        `yaml:"prefix"`
	ReportInterval time.Duration `yaml:"report_interval"`
	Prometheus     bool          `yaml:"prometheus"`
}

// InitMetricScope returns the root scope, its closer and, with prometheus
// enabled, the handler exposing it.
func InitMetricScope(cfg Config) (tally.Scope, io.Closer, http.Handler) {
	interval := cfg.ReportInterval
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	if !cfg.Prometheus {
		log.Warn("No metrics backend configured, metrics are dropped")
		scope, closer := tally.NewRootScope(tally.ScopeOptions{
			Prefix:   cfg.Prefix,
			Reporter: tally.NullStatsReporter,
		}, interval)
		return scope, closer, nil
	}

	// tally panics if scope name contains "-", hence force convert to "_"
	prefix := strings.Replace(cfg.Prefix, "-", "_", -1)
	reporter := tallyprom.NewReporter(tallyprom.Options{})
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:         prefix,
		CachedReporter: reporter,
		Separator:      tallyprom.DefaultSeparator,
	}, interval)
	log.WithField("prefix", prefix).Info("Prometheus metrics enabled")
	return scope, closer, reporter.HTTPHandler()
}
