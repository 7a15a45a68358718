package monitor

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Sampler measures host CPU utilization in percent.
type Sampler interface {
	Sample(ctx context.Context) (float64, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(ctx context.Context) (float64, error)

func (f SamplerFunc) Sample(ctx context.Context) (float64, error) { return f(ctx) }

// ProcStatSampler reads the aggregate cpu line of /proc/stat and reports
// the busy share since the previous call (since boot on the first call).
type ProcStatSampler struct {
	Path string

	mu        sync.Mutex
	prevBusy  uint64
	prevTotal uint64
}

func (s *ProcStatSampler) Sample(_ context.Context) (float64, error) {
	busy, total, err := readCPUTimes(s.Path)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dBusy, dTotal := busy-s.prevBusy, total-s.prevTotal
	s.prevBusy, s.prevTotal = busy, total
	if dTotal == 0 {
		return 0, nil
	}
	return float64(dBusy) / float64(dTotal) * 100, nil
}

// readCPUTimes returns busy and total jiffies. Idle and iowait count as
// not busy.
func readCPUTimes(path string) (busy, total uint64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		var idle uint64
		for i, v := range fields[1:] {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return 0, 0, errors.Wrapf(err, "parse %s", path)
			}
			total += n
			// idle, iowait
			if i == 3 || i == 4 {
				idle += n
			}
		}
		return total - idle, total, nil
	}
	if err := sc.Err(); err != nil {
		return 0, 0, err
	}
	return 0, 0, errors.Errorf("no cpu line in %s", path)
}
