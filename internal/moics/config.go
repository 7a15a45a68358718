package moics

import "github.com/pkg/errors"

type Config struct {
	Population int `yaml:"population"`
	Iterations int `yaml:"iterations"`

	// Pa — доля худших особей, подвергаемых мутации на каждой итерации
	Pa float64 `yaml:"pa"`
}

func DefaultConfig() Config {
	return Config{
		Population: 30,
		Iterations: 50,
		Pa:         0.25,
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
	if c.Pa < 0 || c.Pa > 1 {
		return errors.Errorf(
			"pa должно быть в диапазоне [0,1] (получено %f)",
			c.Pa,
		)
	}
	return nil
}
