// Package config loads service configuration from the environment, with an
// optional YAML file overriding the analysis thresholds per deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/jmkvaal/declinewatch/internal/classify"
	"github.com/jmkvaal/declinewatch/internal/decline"
)

// Config is the service configuration.
type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	Workers        int           `env:"WORKERS" envDefault:"0"` // 0 = available cores
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	IPLimitPerMin  int           `env:"IP_LIMIT_PER_MIN" envDefault:"60"`
	ThresholdsFile string        `env:"THRESHOLDS_FILE"`
}

// Thresholds bundles the tunable analysis bands.
type Thresholds struct {
	Decline  decline.Thresholds  `yaml:"decline"`
	Classify classify.Thresholds `yaml:"classify"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// LoadThresholds returns the analysis thresholds, overridden from the YAML
// file at path when one is configured.
func LoadThresholds(path string) (Thresholds, error) {
	th := Thresholds{
		Decline:  decline.DefaultThresholds(),
		Classify: classify.DefaultThresholds(),
	}
	if path == "" {
		return th, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &th); err != nil {
		return Thresholds{}, fmt.Errorf("parse thresholds file: %w", err)
	}
	return th, nil
}
