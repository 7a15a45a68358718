package scheduler

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
)

// Sample is one CPU utilization report from a host.
type Sample struct {
	Host   string    `json:"host"`
	AvgCPU float64   `json:"avgCpu"`
	Time   time.Time `json:"time"`
}

// utilization collects samples independently of the dispatch lock.
type utilization struct {
	sync.Mutex
	samples []Sample
}

func (u *utilization) add(s Sample) {
	u.Lock()
	defer u.Unlock()
	u.samples = append(u.samples, s)
}

func (u *utilization) clear() {
	u.Lock()
	defer u.Unlock()
	u.samples = nil
}

func (u *utilization) len() int {
	u.Lock()
	defer u.Unlock()
	return len(u.samples)
}

// mean averages samples per host, then averages the host means.
// Zero when nothing was reported.
func (u *utilization) mean() float64 {
	u.Lock()
	defer u.Unlock()

	hosts := mapset.NewThreadUnsafeSet()
	for _, s := range u.samples {
		hosts.Add(s.Host)
	}
	if hosts.Cardinality() == 0 {
		return 0
	}

	var sum float64
	hosts.Each(func(h interface{}) bool {
		var hostSum float64
		var n int
		for _, s := range u.samples {
			if s.Host == h.(string) {
				hostSum += s.AvgCPU
				n++
			}
		}
		sum += hostSum / float64(n)
		return false
	})
	return sum / float64(hosts.Cardinality())
}
