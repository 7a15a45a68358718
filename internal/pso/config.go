package pso

import "github.com/pkg/errors"

type Config struct {
	Iterations int `yaml:"iterations"`
	Particles  int `yaml:"particles"`

	W  float64 `yaml:"w"`
	C1 float64 `yaml:"c1"`
	C2 float64 `yaml:"c2"`

	// VMaxFactor — ограничение скорости в долях от количества исполнителей
	VMaxFactor float64 `yaml:"vmax_factor"`
}

func DefaultConfig() Config {
	return Config{
		Iterations: 50,
		Particles:  30,

		W:  0.5,
		C1: 1.5,
		C2: 1.5,

		VMaxFactor: 0.5,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return errors.Errorf(
			"количество итераций должно быть > 0 (получено %d)",
			c.Iterations,
		)
	}
	if c.Particles <= 0 {
		return errors.Errorf(
			"Particles должно быть > 0 (получено %d)",
			c.Particles,
		)
	}
	if c.W < 0 {
		return errors.Errorf(
			"W должно быть >= 0 (получено %f)",
			c.W,
		)
	}
	if c.C1 < 0 || c.C2 < 0 {
		return errors.Errorf(
			"C1 и C2 должны быть >= 0 (получено %f, %f)",
			c.C1,
			c.C2,
		)
	}
	if c.VMaxFactor <= 0 {
		return errors.Errorf(
			"VMaxFactor должно быть > 0 (получено %f)",
			c.VMaxFactor,
		)
	}
	return nil
}
