package scheduler

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Report summarizes a completed run. Times are milliseconds unless the
// field name says otherwise.
type Report struct {
	RunID     string `json:"run_id"`
	Algorithm string `json:"algorithm"`
	Tasks     int    `json:"tasks"`

	MakespanSeconds float64 `json:"makespan_seconds"`
	Throughput      float64 `json:"throughput"`
	TotalCost       float64 `json:"total_cost"`

	AvgStartMs  float64 `json:"avg_start_ms"`
	AvgFinishMs float64 `json:"avg_finish_ms"`
	AvgExecMs   float64 `json:"avg_exec_ms"`

	WorkerExecMs    map[string]float64 `json:"worker_exec_ms"`
	ImbalanceDegree float64            `json:"imbalance_degree"`

	AvgWaitingMs        float64 `json:"avg_waiting_ms"`
	ResourceUtilization float64 `json:"resource_utilization"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Fields returns the report as logrus fields.
func (r *Report) Fields() log.Fields {
	return log.Fields{
		"run_id":               r.RunID,
		"algorithm":            r.Algorithm,
		"tasks":                r.Tasks,
		"makespan_seconds":     r.MakespanSeconds,
		"throughput":           r.Throughput,
		"total_cost":           r.TotalCost,
		"avg_start_ms":         r.AvgStartMs,
		"avg_finish_ms":        r.AvgFinishMs,
		"avg_exec_ms":          r.AvgExecMs,
		"imbalance_degree":     r.ImbalanceDegree,
		"avg_waiting_ms":       r.AvgWaitingMs,
		"resource_utilization": r.ResourceUtilization,
	}
}

// imbalanceDegree is (max - min) / mean over the per-worker totals.
// Workers that finished nothing are not part of the totals.
func imbalanceDegree(totals map[string]float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(totals))
	for _, v := range totals {
		vals = append(vals, v)
	}
	mean := stat.Mean(vals, nil)
	if mean == 0 {
		return 0
	}
	return (floats.Max(vals) - floats.Min(vals)) / mean
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}
