// Package algo связывает имена алгоритмов с конструкторами оптимизаторов.
package algo

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"cloudsched/internal/aco"
	"cloudsched/internal/bat"
	"cloudsched/internal/cs"
	"cloudsched/internal/ga"
	"cloudsched/internal/moics"
	"cloudsched/internal/opt"
	"cloudsched/internal/pso"
	"cloudsched/internal/sa"
	"cloudsched/internal/ts"
)

// Name — идентификатор алгоритма в конфигурации и флагах.
type Name string

const (
	BA    Name = "ba"
	CS    Name = "cs"
	PSO   Name = "pso"
	MOICS Name = "moics"
	GA    Name = "ga"
	SA    Name = "sa"
	TS    Name = "ts"
	ACO   Name = "aco"
)

// ParseName принимает имя без учёта регистра; "bat" и "moics-obl" — синонимы.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	switch n {
	case "bat":
		return BA, nil
	case "moics-obl", "moics_obl":
		return MOICS, nil
	}
	if _, ok := factories[n]; !ok {
		return "", errors.Errorf("unknown algorithm %q; available: %v", s, Names())
	}
	return n, nil
}

// Config собирает параметры всех алгоритмов. Используется только
// секция выбранного алгоритма, но проверяются все.
type Config struct {
	BA    bat.Config   `yaml:"ba"`
	CS    cs.Config    `yaml:"cs"`
	PSO   pso.Config   `yaml:"pso"`
	MOICS moics.Config `yaml:"moics"`
	GA    ga.Config    `yaml:"ga"`
	SA    sa.Config    `yaml:"sa"`
	TS    ts.Config    `yaml:"ts"`
	ACO   aco.Config   `yaml:"aco"`
}

func DefaultConfig() Config {
	return Config{
		BA:    bat.DefaultConfig(),
		CS:    cs.DefaultConfig(),
		PSO:   pso.DefaultConfig(),
		MOICS: moics.DefaultConfig(),
		GA:    ga.DefaultConfig(),
		SA:    sa.DefaultConfig(),
		TS:    ts.DefaultConfig(),
		ACO:   aco.DefaultConfig(),
	}
}

// Validate возвращает все ошибки конфигурации сразу.
func (c Config) Validate() error {
	var err error
	err = multierr.Append(err, errors.Wrap(c.BA.Validate(), "ba"))
	err = multierr.Append(err, errors.Wrap(c.CS.Validate(), "cs"))
	err = multierr.Append(err, errors.Wrap(c.PSO.Validate(), "pso"))
	err = multierr.Append(err, errors.Wrap(c.MOICS.Validate(), "moics"))
	err = multierr.Append(err, errors.Wrap(c.GA.Validate(), "ga"))
	err = multierr.Append(err, errors.Wrap(c.SA.Validate(), "sa"))
	err = multierr.Append(err, errors.Wrap(c.TS.Validate(), "ts"))
	err = multierr.Append(err, errors.Wrap(c.ACO.Validate(), "aco"))
	return err
}

type factory func(cfg Config, rng *rand.Rand) (opt.Optimizer, error)

var factories = map[Name]factory{
	BA: func(cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
		return bat.New(cfg.BA, rng)
	},
	CS: func(cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
		return cs.New(cfg.CS, rng)
	},
	PSO: func(cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
		return pso.New(cfg.PSO, rng)
	},
	MOICS: func(cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
		return moics.New(cfg.MOICS, rng)
	},
	GA: func(cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
		return ga.New(cfg.GA, rng)
	},
	SA: func(cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
		return sa.New(cfg.SA, rng)
	},
	TS: func(cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
		return ts.New(cfg.TS, rng)
	},
	ACO: func(cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
		return aco.New(cfg.ACO, rng)
	},
}

// New создаёт оптимизатор по имени.
func New(name Name, cfg Config, rng *rand.Rand) (opt.Optimizer, error) {
	f, ok := factories[name]
	if !ok {
		return nil, errors.Errorf("unknown algorithm %q; available: %v", name, Names())
	}
	o, err := f(cfg, rng)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return o, nil
}

// Factory возвращает конструктор с фиксированной конфигурацией,
// принимающий только сид.
func Factory(name Name, cfg Config) (func(seed int64) (opt.Optimizer, error), error) {
	if _, ok := factories[name]; !ok {
		return nil, errors.Errorf("unknown algorithm %q; available: %v", name, Names())
	}
	return func(seed int64) (opt.Optimizer, error) {
		return New(name, cfg, rand.New(rand.NewSource(seed)))
	}, nil
}

// Names возвращает отсортированный список алгоритмов.
func Names() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
