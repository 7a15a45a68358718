// Package worker runs synthetic CPU-bound tasks on behalf of the scheduler.
package worker

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"gonum.org/v1/gonum/floats"

	"cloudsched/internal/cloud"
)

// ErrUnknownTask is returned for a weight label outside light, medium and heavy.
var ErrUnknownTask = errors.New("unknown task type")

const (
	lightNameLimit  = 8000
	lightRounds     = 10000
	heavyPriceLimit = 10000
	heavyRounds     = 30000
	heavyModulus    = 99997
	mediumIDLimit   = 10000
	mediumMaxHashes = 100000
	sampleHashes    = 5
)

// Result is the payload returned for an executed task. Times are
// milliseconds.
type Result struct {
	Summary string `json:"summary"`

	ProductCount int `json:"product_count,omitempty"`
	FinalHash    int `json:"final_hash,omitempty"`

	AveragePrice float64 `json:"average_price,omitempty"`
	Total        int64   `json:"total,omitempty"`
	PriceCount   int     `json:"price_count,omitempty"`

	ProcessedCombinations int      `json:"processed_combinations,omitempty"`
	SampleHash            []string `json:"sample_hash,omitempty"`

	StartTime     int64 `json:"start_time"`
	FinishTime    int64 `json:"finish_time"`
	ExecutionTime int64 `json:"execution_time"`
}

// Stats counts executions since start.
type Stats struct {
	Executed int64 `json:"executed"`
	Failed   int64 `json:"failed"`
	InFlight int64 `json:"in_flight"`
}

// Executor turns a weight label into measured CPU work.
type Executor struct {
	catalog Catalog
	now     func() time.Time

	executed *atomic.Int64
	failed   *atomic.Int64
	inFlight *atomic.Int64
}

func NewExecutor(catalog Catalog) *Executor {
	return &Executor{
		catalog:  catalog,
		now:      time.Now,
		executed: atomic.NewInt64(0),
		failed:   atomic.NewInt64(0),
		inFlight: atomic.NewInt64(0),
	}
}

// Execute runs one task of the given weight. An empty label means light.
func (e *Executor) Execute(ctx context.Context, label string) (Result, error) {
	weight := cloud.Light
	if label != "" {
		weight = cloud.ParseWeightClass(label)
	}

	var run func(context.Context) (Result, error)
	switch weight {
	case cloud.Light:
		run = e.light
	case cloud.Medium:
		run = e.medium
	case cloud.Heavy:
		run = e.heavy
	default:
		return Result{}, ErrUnknownTask
	}

	e.inFlight.Inc()
	defer e.inFlight.Dec()

	start := e.now()
	res, err := run(ctx)
	if err != nil {
		e.failed.Inc()
		return Result{}, err
	}
	finish := e.now()

	res.StartTime = start.UnixMilli()
	res.FinishTime = finish.UnixMilli()
	res.ExecutionTime = res.FinishTime - res.StartTime
	e.executed.Inc()

	log.WithFields(log.Fields{
		"task":           weight,
		"execution_time": res.ExecutionTime,
	}).Debug("task executed")
	return res, nil
}

func (e *Executor) Stats() Stats {
	return Stats{
		Executed: e.executed.Load(),
		Failed:   e.failed.Load(),
		InFlight: e.inFlight.Load(),
	}
}

// light hashes the first product name repeatedly with md5.
func (e *Executor) light(ctx context.Context) (Result, error) {
	names, err := e.catalog.ProductNames(ctx, lightNameLimit)
	if err != nil {
		return Result{}, err
	}
	val := "default"
	if len(names) > 0 && names[0] != "" {
		val = names[0]
	}

	total := 0
	for i := 0; i < lightRounds; i++ {
		sum := md5.Sum([]byte(fmt.Sprintf("light_%d_%s", i, val)))
		total += len(hex.EncodeToString(sum[:]))
	}
	return Result{
		Summary:      "Light processing with CPU load",
		ProductCount: len(names),
		FinalHash:    total,
	}, nil
}

// heavy re-sums the top prices on every round.
func (e *Executor) heavy(ctx context.Context) (Result, error) {
	prices, err := e.catalog.TopPrices(ctx, heavyPriceLimit)
	if err != nil {
		return Result{}, err
	}

	var total int64
	for i := 0; i < heavyRounds; i++ {
		total += int64(math.Floor(math.Mod(floats.Sum(prices)*float64(i), heavyModulus)))
	}

	var avg float64
	if len(prices) > 0 {
		avg = floats.Sum(prices) / float64(len(prices))
	}
	return Result{
		Summary:      "Heavy processing with CPU load",
		AveragePrice: avg,
		Total:        total,
		PriceCount:   len(prices),
	}, nil
}

// medium hashes product and user id pairs with sha256.
func (e *Executor) medium(ctx context.Context) (Result, error) {
	products, err := e.catalog.ProductIDs(ctx, mediumIDLimit)
	if err != nil {
		return Result{}, err
	}
	users, err := e.catalog.UserIDs(ctx, mediumIDLimit)
	if err != nil {
		return Result{}, err
	}

	count := 0
	samples := make([]string, 0, sampleHashes)
outer:
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for _, u := range users {
			if count >= mediumMaxHashes {
				break outer
			}
			sum := sha256.Sum256([]byte(fmt.Sprintf("%d_heavy_%d_processing", p, u)))
			if len(samples) < sampleHashes {
				samples = append(samples, hex.EncodeToString(sum[:]))
			}
			count++
		}
	}
	return Result{
		Summary:               "Medium CPU-bound processing",
		ProcessedCombinations: count,
		SampleHash:            samples,
	}, nil
}
