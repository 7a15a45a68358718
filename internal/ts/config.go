package ts

import "github.com/pkg/errors"

// Neighborhood определяет тип окрестности.
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

	TabuTenure int `yaml:"tabu_tenure"`

	TabuTenureRand int `yaml:"tabu_tenure_rand"`

	NeighborsPerIter int `yaml:"neighbors_per_iter"`

	Neighborhood Neighborhood `yaml:"neighborhood"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:        0,
		IterationsPerTask: 10,

		TabuTenure:     7,
		TabuTenureRand: 3,

		NeighborsPerIter: 30,
		Neighborhood:     NeighborhoodReassign,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerTask <= 0 {
		return errors.New(
			"должно быть задано Iterations > 0 или IterationsPerTask > 0",
		)
	}
	if c.TabuTenure <= 0 {
		return errors.Errorf(
			"TabuTenure должно быть > 0 (получено %d)",
			c.TabuTenure,
		)
	}
	if c.TabuTenureRand < 0 {
		return errors.Errorf(
			"TabuTenureRand должно быть >= 0 (получено %d)",
			c.TabuTenureRand,
		)
	}
	if c.NeighborsPerIter <= 0 {
		return errors.Errorf(
			"NeighborsPerIter должно быть > 0 (получено %d)",
			c.NeighborsPerIter,
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
