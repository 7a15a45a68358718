// Package scheduler dispatches a fixed batch of tasks to workers following
// the assignment computed by one optimizer, and reports run metrics.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"

	"cloudsched/internal/cloud"
	"cloudsched/internal/opt"
)

// Options configures a Scheduler. Zero values pick defaults.
type Options struct {
	// Algorithm names the optimizer in logs and reports.
	Algorithm string
	// RunSize is the number of completed dispatches after which the run
	// report is emitted. Defaults to the number of tasks.
	RunSize  int
	Reporter Reporter
	Scope    tally.Scope
	Clock    func() time.Time
}

// Dispatch describes one delivered task.
type Dispatch struct {
	Task        cloud.Task
	Worker      string
	WorkerIndex int
	Outcome     Outcome
	// Report is set on the dispatch that completed the run.
	Report *Report
}

// Status is a snapshot of the current run.
type Status struct {
	Algorithm string `json:"algorithm"`
	Tasks     int    `json:"tasks"`
	RunSize   int    `json:"run_size"`
	Cursor    int    `json:"cursor"`
	Completed int    `json:"completed"`
	Planned   bool   `json:"planned"`
	Reported  bool   `json:"reported"`
	CPUReport int    `json:"cpu_samples"`
}

// Scheduler drives sequential dispatch of one run at a time.
type Scheduler struct {
	mu sync.Mutex

	tasks    []cloud.Task
	workers  []string
	workload *cloud.Workload

	optimizer  opt.Optimizer
	dispatcher Dispatcher
	reporter   Reporter

	algorithm string
	runSize   int
	now       func() time.Time
	metrics   *Metrics

	state runState
	util  utilization
}

// New creates a scheduler for the given tasks and worker addresses.
func New(
	tasks []cloud.Task,
	workers []string,
	optimizer opt.Optimizer,
	dispatcher Dispatcher,
	o Options,
) (*Scheduler, error) {
	if optimizer == nil {
		return nil, errors.New("optimizer is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	w, err := cloud.NewWorkload(tasks, len(workers))
	if err != nil {
		return nil, err
	}

	runSize := o.RunSize
	if runSize == 0 {
		runSize = len(tasks)
	}
	if runSize < 0 || runSize > len(tasks) {
		return nil, errors.Errorf("run size must be in (0, %d], got %d", len(tasks), runSize)
	}

	scope := o.Scope
	if scope == nil {
		scope = tally.NoopScope
	}
	clock := o.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Scheduler{
		tasks:      tasks,
		workers:    workers,
		workload:   w,
		optimizer:  optimizer,
		dispatcher: dispatcher,
		reporter:   o.Reporter,
		algorithm:  o.Algorithm,
		runSize:    runSize,
		now:        clock,
		metrics:    NewMetrics(scope),
		state:      newRunState(),
	}, nil
}

// Schedule dispatches the next task of the run and waits for the worker.
//
// It returns ErrRunComplete when every task has been dispatched,
// *AssignmentError when the optimizer output is unusable and
// *DispatchError when the worker call failed.
func (s *Scheduler) Schedule(ctx context.Context) (*Dispatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.assignment == nil {
		if err := s.plan(ctx); err != nil {
			return nil, err
		}
	}

	if s.state.cursor >= len(s.tasks) {
		s.metrics.RunExhausted.Inc(1)
		return nil, ErrRunComplete
	}

	if s.state.cursor == 0 {
		s.state.firstDispatch = s.now()
		s.util.clear()
	}

	idx := s.state.cursor
	task := s.tasks[idx]
	workerIdx := s.state.assignment[idx]
	addr := s.workers[workerIdx]
	s.state.cursor++

	entry := log.WithFields(log.Fields{
		"task_id": task.ID,
		"task":    task.Name,
		"weight":  task.Weight,
		"worker":  addr,
		"index":   idx,
	})

	start := s.now()
	out, err := s.dispatcher.Dispatch(ctx, addr, task.Weight)
	s.metrics.DispatchLatency.Record(s.now().Sub(start))
	if err != nil {
		s.metrics.DispatchFail.Inc(1)
		entry.WithError(err).Error("dispatch failed")
		return nil, &DispatchError{
			TaskID:   task.ID,
			TaskName: task.Name,
			Weight:   task.Weight,
			Worker:   addr,
			Err:      err,
		}
	}
	s.metrics.DispatchSuccess.Inc(1)
	entry.WithField("execution_time", out.ExecutionTime).Debug("task dispatched")

	s.state.record(addr, out)

	d := &Dispatch{
		Task:        task,
		Worker:      addr,
		WorkerIndex: workerIdx,
		Outcome:     out,
	}
	if s.state.completed == s.runSize && !s.state.reported {
		s.state.reported = true
		d.Report = s.report()
	}
	return d, nil
}

// plan computes and validates the assignment of the current run.
func (s *Scheduler) plan(ctx context.Context) error {
	s.metrics.OptimizerSolve.Inc(1)
	res, err := s.optimizer.Solve(ctx, s.workload)
	if err != nil {
		s.metrics.OptimizerSolveFail.Inc(1)
		return errors.Wrapf(err, "%s solve", s.algorithm)
	}
	s.metrics.OptimizerDuration.Record(res.Duration)

	if err := cloud.ValidateAssignment(res.Assignment, len(s.tasks), len(s.workers)); err != nil {
		return &AssignmentError{Algorithm: s.algorithm, Err: err}
	}
	s.state.assignment = res.Assignment

	log.WithFields(log.Fields{
		"algorithm":   s.algorithm,
		"evaluations": res.Evaluations,
		"fitness":     res.Fitness,
		"makespan":    res.Objectives.Makespan,
		"cost":        res.Objectives.Cost,
		"duration":    res.Duration,
	}).Info("assignment computed")
	log.WithField("assignment", res.Assignment).Debug("assignment vector")
	return nil
}

// report builds the completion report. Called with mu held.
func (s *Scheduler) report() *Report {
	finished := s.now()
	st := &s.state

	makespan := finished.Sub(st.firstDispatch).Seconds()
	var throughput float64
	if makespan > 0 {
		throughput = float64(s.runSize) / makespan
	}

	workerExec := make(map[string]float64, len(st.workerExec))
	for k, v := range st.workerExec {
		workerExec[k] = v
	}

	r := &Report{
		RunID:               uuid.New(),
		Algorithm:           s.algorithm,
		Tasks:               s.runSize,
		MakespanSeconds:     makespan,
		Throughput:          throughput,
		TotalCost:           st.totalCost,
		AvgStartMs:          mean(st.startTimes),
		AvgFinishMs:         mean(st.finishTimes),
		AvgExecMs:           mean(st.execTimes),
		WorkerExecMs:        workerExec,
		ImbalanceDegree:     imbalanceDegree(workerExec),
		AvgWaitingMs:        mean(st.waiting),
		ResourceUtilization: s.util.mean(),
		StartedAt:           st.firstDispatch,
		FinishedAt:          finished,
	}

	s.metrics.RunCompleted.Inc(1)
	s.metrics.Makespan.Update(r.MakespanSeconds)
	s.metrics.Throughput.Update(r.Throughput)
	s.metrics.TotalCost.Update(r.TotalCost)
	s.metrics.Imbalance.Update(r.ImbalanceDegree)

	log.WithFields(r.Fields()).Info("run completed")

	if s.reporter != nil {
		s.reporter.Report(r)
	}
	return r
}

// Reset abandons the current run. Calling it twice is harmless.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = newRunState()
	s.util.clear()
	log.WithField("algorithm", s.algorithm).Info("scheduler reset")
}

// RecordCPU stores a utilization sample. Safe to call during a dispatch.
func (s *Scheduler) RecordCPU(sample Sample) {
	if sample.Time.IsZero() {
		sample.Time = s.now()
	}
	s.util.add(sample)
	s.metrics.CPUReports.Inc(1)
}

// Status returns a snapshot of the current run.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Algorithm: s.algorithm,
		Tasks:     len(s.tasks),
		RunSize:   s.runSize,
		Cursor:    s.state.cursor,
		Completed: s.state.completed,
		Planned:   s.state.assignment != nil,
		Reported:  s.state.reported,
		CPUReport: s.util.len(),
	}
}
