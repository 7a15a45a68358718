package cloud

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// ValidateAssignment checks that a has length n and every entry is a worker
// index in [0, workers).
func ValidateAssignment(a []int, n, workers int) error {
	if len(a) != n {
		return errors.Errorf("assignment length must be %d (got %d)", n, len(a))
	}
	for i, w := range a {
		if w < 0 || w >= workers {
			return errors.Errorf("assignment[%d]=%d out of range [0,%d)", i, w, workers)
		}
	}
	return nil
}

// RandomAssignment draws every gene uniformly from [0, workers).
func RandomAssignment(n, workers int, rng *rand.Rand) []int {
	a := make([]int, n)
	FillRandom(a, workers, rng)
	return a
}

func FillRandom(a []int, workers int, rng *rand.Rand) {
	for i := range a {
		a[i] = rng.Intn(workers)
	}
}

// ClampWorker maps an arbitrary real-valued gene to a valid worker index.
// Infinite steps from the Lévy operators saturate at the bounds.
func ClampWorker(v float64, workers int) int {
	hi := float64(workers - 1)
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= hi:
		return workers - 1
	}
	return int(v)
}

func CloneAssignment(a []int) []int {
	c := make([]int, len(a))
	copy(c, a)
	return c
}

// LevyStep draws U^-1.5 for U uniform in (0,1).
func LevyStep(rng *rand.Rand) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return math.Pow(u, -1.5)
}

// RandomSign returns -1 or +1 with equal probability.
func RandomSign(rng *rand.Rand) float64 {
	if rng.Float64() < 0.5 {
		return -1
	}
	return 1
}
