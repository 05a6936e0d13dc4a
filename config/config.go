// Package config provides YAML-based configuration for the compilation
// pipeline's tunable policies.
package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config holds the pipeline options a user may set from a YAML file or CLI
// flags. Zero values fall back to defaults at load time.
type Config struct {
	// Namespace for synthesized part ids: urn:<namespace>:part:<name>:001.
	Namespace string `yaml:"namespace"`

	// MaxPasses caps the attribute evaluator's fixed-point loop.
	MaxPasses int `yaml:"max_passes"`

	// StrictUnresolved fails compilation when attributes remain unresolved
	// after the pass cap, instead of exporting them as raw strings.
	StrictUnresolved bool `yaml:"strict_unresolved"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Namespace: "lunarspaceport1",
		MaxPasses: 10,
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.MaxPasses, validation.Min(1), validation.Max(1000)),
	)
}

// Load reads a YAML config file, expanding environment variables, and fills
// unset fields from defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = Default().Namespace
	}
	if cfg.MaxPasses == 0 {
		cfg.MaxPasses = Default().MaxPasses
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
