// Package monitor periodically reports host CPU utilization to the scheduler.
package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Report is the body posted to the scheduler.
type Report struct {
	Host   string  `json:"host"`
	AvgCPU float64 `json:"avgCpu"`
}

type Config struct {
	BrokerURL string        `yaml:"broker_url" validate:"nonzero"`
	Host      string        `yaml:"host" validate:"nonzero"`
	Interval  time.Duration `yaml:"interval"`
}

// Reporter samples and sends one report per interval.
type Reporter struct {
	cfg     Config
	sampler Sampler
	client  *http.Client

	sent   *atomic.Int64
	failed *atomic.Int64
}

func NewReporter(cfg Config, sampler Sampler) *Reporter {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Reporter{
		cfg:     cfg,
		sampler: sampler,
		client:  &http.Client{Timeout: 5 * time.Second},
		sent:    atomic.NewInt64(0),
		failed:  atomic.NewInt64(0),
	}
}

// Run reports until ctx is done. Failed rounds are logged and skipped.
func (r *Reporter) Run(ctx context.Context) error {
	log.WithFields(log.Fields{
		"host":     r.cfg.Host,
		"broker":   r.cfg.BrokerURL,
		"interval": r.cfg.Interval,
	}).Info("CPU monitor started")

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.ReportOnce(ctx); err != nil {
				log.WithError(err).Error("CPU report failed")
			}
		}
	}
}

// ReportOnce takes one sample and posts it.
func (r *Reporter) ReportOnce(ctx context.Context) error {
	cpu, err := r.sampler.Sample(ctx)
	if err != nil {
		r.failed.Inc()
		return errors.Wrap(err, "sample cpu")
	}
	if err := r.post(ctx, Report{Host: r.cfg.Host, AvgCPU: cpu}); err != nil {
		r.failed.Inc()
		return err
	}
	r.sent.Inc()
	log.WithFields(log.Fields{"host": r.cfg.Host, "avg_cpu": cpu}).Debug("CPU usage sent")
	return nil
}

func (r *Reporter) post(ctx context.Context, rep Report) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, r.cfg.BrokerURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "post %s", r.cfg.BrokerURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := ioutil.ReadAll(resp.Body)
		return errors.Errorf("broker responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

// Sent and Failed count report rounds since start.
func (r *Reporter) Sent() int64   { return r.sent.Load() }
func (r *Reporter) Failed() int64 { return r.failed.Load() }
