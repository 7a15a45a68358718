package cs

import "github.com/pkg/errors"

type Config struct {
	Nests      int `yaml:"nests"`
	Iterations int `yaml:"iterations"`

	// DiscoveryRate — вероятность обнаружения (замены) гнезда
	DiscoveryRate float64 `yaml:"discovery_rate"`
}

func DefaultConfig() Config {
	return Config{
		Nests:         25,
		Iterations:    50,
		DiscoveryRate: 0.25,
	}
}

func (c Config) Validate() error {
	if c.Nests <= 0 {
		return errors.Errorf(
			"количество гнёзд должно быть > 0 (получено %d)",
			c.Nests,
		)
	}
	if c.Iterations <= 0 {
		return errors.Errorf(
			"количество итераций должно быть > 0 (получено %d)",
			c.Iterations,
		)
	}
	if c.DiscoveryRate < 0 || c.DiscoveryRate > 1 {
		return errors.Errorf(
			"вероятность обнаружения должна быть в диапазоне [0,1] (получено %f)",
			c.DiscoveryRate,
		)
	}
	return nil
}
