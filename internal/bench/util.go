package bench

import (
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func randForSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func dirOf(path string) string {
	d := filepath.Dir(path)
	if d == "." {
		return ""
	}
	return d
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// ParseCases разбирает список вида "20x3,50x5": задачи x исполнители.
// Сид нагрузки фиксирован для каждой конфигурации.
func ParseCases(s string, baseSeed int64) ([]Case, error) {
	parts := SplitCSV(s)
	cases := make([]Case, 0, len(parts))

	for i, p := range parts {
		tw := strings.Split(p, "x")
		if len(tw) != 2 {
			return nil, errors.Errorf("пара %q невалидной схемы, пример: 50x5", p)
		}
		tasks, err := strconv.Atoi(strings.TrimSpace(tw[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "пара %q: количество задач", p)
		}
		workers, err := strconv.Atoi(strings.TrimSpace(tw[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "пара %q: количество исполнителей", p)
		}
		if tasks <= 0 || workers <= 0 {
			return nil, errors.Errorf("пара %q: количество задач и исполнителей должно быть > 0", p)
		}

		cases = append(cases, Case{
			Tasks:        tasks,
			Workers:      workers,
			WorkloadSeed: baseSeed + int64(i)*10_000 + int64(tasks)*100 + int64(workers),
		})
	}
	return cases, nil
}

func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
