package scorer

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// Config holds the component weight set. Weights must sum to 1.0.
type Config struct {
	Weights map[model.ComponentName]float64 `yaml:"weights"`
}

// DefaultConfig returns the fixed supervisory weight set:
// capital 25%, asset quality 25%, earnings 20%, liquidity 15%,
// sensitivity 15%.
func DefaultConfig() Config {
	return Config{
		Weights: map[model.ComponentName]float64{
			model.ComponentCapital:     0.25,
			model.ComponentAssetQual:   0.25,
			model.ComponentEarnings:    0.20,
			model.ComponentLiquidity:   0.15,
			model.ComponentSensitivity: 0.15,
		},
	}
}

// LoadConfig reads a weight override file. Components omitted from the file
// keep their default weight.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "scorer: read config %s", path)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, eris.Wrapf(err, "scorer: parse config %s", path)
	}
	for name, w := range file.Weights {
		cfg.Weights[name] = w
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that every weight is within [0,1] and the set sums to 1.0.
func (c Config) Validate() error {
	var sum float64
	for name, w := range c.Weights {
		if w < 0 || w > 1 {
			return eris.Errorf("scorer: weight for %s out of range: %v", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return eris.Errorf("scorer: weights sum to %v, want 1.0", sum)
	}
	return nil
}
