// Package transport delivers tasks to workers over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"cloudsched/internal/cloud"
	"cloudsched/internal/scheduler"
)

// ExecutePath is the worker endpoint that runs one task.
const ExecutePath = "/api/execute"

// ExecuteRequest is the body posted to a worker.
type ExecuteRequest struct {
	Task cloud.WeightClass `json:"task"`
}

// ExecuteResponse is the part of the worker reply the scheduler reads.
type ExecuteResponse struct {
	Status string `json:"status"`
	Task   string `json:"task"`
	Result struct {
		StartTime     int64 `json:"start_time"`
		FinishTime    int64 `json:"finish_time"`
		ExecutionTime int64 `json:"execution_time"`
	} `json:"result"`
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every dispatch. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client implements scheduler.Dispatcher over HTTP JSON.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

var _ scheduler.Dispatcher = (*Client)(nil)

// NewClient returns a dispatch client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 4,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch posts the weight class to addr and waits for the worker's timing.
func (c *Client) Dispatch(ctx context.Context, addr string, weight cloud.WeightClass) (scheduler.Outcome, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(ExecuteRequest{Task: weight})
	if err != nil {
		return scheduler.Outcome{}, err
	}

	url := strings.TrimRight(addr, "/") + ExecutePath
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return scheduler.Outcome{}, errors.Wrap(err, "build request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return scheduler.Outcome{}, errors.Wrapf(err, "post %s", url)
	}
	defer resp.Body.Close()

	contents, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return scheduler.Outcome{}, errors.Wrapf(err, "read response of %s", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return scheduler.Outcome{}, errors.Errorf("worker %s responded %d: %s", addr, resp.StatusCode, strings.TrimSpace(string(contents)))
	}

	var er ExecuteResponse
	if err := json.Unmarshal(contents, &er); err != nil {
		return scheduler.Outcome{}, errors.Wrapf(err, "decode response of %s", url)
	}

	log.WithFields(log.Fields{
		"worker":         addr,
		"task":           weight,
		"status":         er.Status,
		"execution_time": er.Result.ExecutionTime,
	}).Debug("worker responded")

	return scheduler.Outcome{
		StartTime:     er.Result.StartTime,
		FinishTime:    er.Result.FinishTime,
		ExecutionTime: er.Result.ExecutionTime,
		Raw:           json.RawMessage(contents),
	}, nil
}
