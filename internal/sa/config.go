package sa

import "github.com/pkg/errors"

// Тип окрестности
type Neighborhood string

const (
	// NeighborhoodReassign переносит одну задачу на другого исполнителя
	NeighborhoodReassign Neighborhood = "reassign"
	// NeighborhoodSwap меняет исполнителей двух задач
	NeighborhoodSwap Neighborhood = "swap"
)

type Config struct {
	Iterations        int `yaml:"iterations"`
	IterationsPerTask int `yaml:"iterations_per_task"`

	InitialTemp float64 `yaml:"initial_temp"`
	FinalTemp   float64 `yaml:"final_temp"`
	Alpha       float64 `yaml:"alpha"`

	Neighborhood Neighborhood `yaml:"neighborhood"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:        0,
		IterationsPerTask: 50,

		InitialTemp: 100.0,
		FinalTemp:   0.01,
		Alpha:       0.995,

		Neighborhood: NeighborhoodReassign,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerTask <= 0 {
		return errors.New(
			"должно быть задано Iterations > 0 или IterationsPerTask > 0",
		)
	}
	if c.InitialTemp <= 0 {
		return errors.Errorf(
			"InitialTemp должно быть > 0 (получено %f)",
			c.InitialTemp,
		)
	}
	if c.FinalTemp <= 0 {
		return errors.Errorf(
			"FinalTemp должно быть > 0 (получено %f)",
			c.FinalTemp,
		)
	}
	if c.FinalTemp >= c.InitialTemp {
		return errors.Errorf(
			"FinalTemp должно быть < InitialTemp (получено %f >= %f)",
			c.FinalTemp,
			c.InitialTemp,
		)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return errors.Errorf(
			"alpha должно лежать в интервале (0,1) (получено %f)",
			c.Alpha,
		)
	}
	switch c.Neighborhood {
	case NeighborhoodReassign, NeighborhoodSwap:
		// ok
	default:
		return errors.Errorf(
			"неизвестный тип окрестности %q",
			c.Neighborhood,
		)
	}
	return nil
}
