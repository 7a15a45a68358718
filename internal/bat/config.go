package bat

import "github.com/pkg/errors"

type Config struct {
	Population int `yaml:"population"`
	Iterations int `yaml:"iterations"`

	// Alpha — коэффициент затухания громкости
	Alpha float64 `yaml:"alpha"`
	// Gamma — прирост частоты импульсов
	Gamma float64 `yaml:"gamma"`

	InitialLoudness  float64 `yaml:"initial_loudness"`
	InitialPulseRate float64 `yaml:"initial_pulse_rate"`
}

func DefaultConfig() Config {
	return Config{
		Population: 10,
		Iterations: 5,

		Alpha: 0.92,
		Gamma: 0.92,

		InitialLoudness:  1.0,
		InitialPulseRate: 0.0,
	}
}

func (c Config) Validate() error {
	if c.Population <= 0 {
		return errors.Errorf(
			"размер популяции должен быть > 0 (получено %d)",
			c.Population,
		)
	}
	if c.Iterations <= 0 {
		return errors.Errorf(
			"количество итераций должно быть > 0 (получено %d)",
			c.Iterations,
		)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return errors.Errorf(
			"alpha должно лежать в интервале (0,1] (получено %f)",
			c.Alpha,
		)
	}
	if c.Gamma < 0 {
		return errors.Errorf(
			"gamma должно быть >= 0 (получено %f)",
			c.Gamma,
		)
	}
	if c.InitialLoudness < 0 || c.InitialLoudness > 1 {
		return errors.Errorf(
			"начальная громкость должна быть в диапазоне [0,1] (получено %f)",
			c.InitialLoudness,
		)
	}
	if c.InitialPulseRate < 0 || c.InitialPulseRate > 1 {
		return errors.Errorf(
			"начальная частота импульсов должна быть в диапазоне [0,1] (получено %f)",
			c.InitialPulseRate,
		)
	}
	return nil
}
