package scheduler

import (
	"context"
	"encoding/json"

	"cloudsched/internal/cloud"
)

//go:generate mockgen -destination=mocks/mock_dispatcher.go -package=mocks cloudsched/internal/scheduler Dispatcher,Reporter

// Outcome is what a worker reports back for one executed task. Times are
// milliseconds: StartTime and FinishTime since the epoch, ExecutionTime as
// a duration.
type Outcome struct {
	StartTime     int64
	FinishTime    int64
	ExecutionTime int64

	// Raw is the worker's response body, passed through to API callers.
	Raw json.RawMessage
}

// Dispatcher delivers one task to a worker and waits for it to finish.
type Dispatcher interface {
	Dispatch(ctx context.Context, addr string, weight cloud.WeightClass) (Outcome, error)
}

// Reporter receives the completion report of every run. It is called with
// the scheduler locked and must not call back into it.
type Reporter interface {
	Report(r *Report)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(r *Report)

func (f ReporterFunc) Report(r *Report) { f(r) }
