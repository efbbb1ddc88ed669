// Package config loads training hyperparameters from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/weaklabel/genmodel"
	"github.com/happyhackingspace/weaklabel/gibbs"
	"github.com/happyhackingspace/weaklabel/noiseaware"
)

// Config holds every tunable of a training run.
type Config struct {
	Generative genmodel.Config  `yaml:"generative"`
	Sampler    gibbs.Config     `yaml:"sampler"`
	NoiseAware NoiseAwareConfig `yaml:"noise_aware"`
}

// NoiseAwareConfig mirrors noiseaware.TrainConfig for the file format.
type NoiseAwareConfig struct {
	Iterations int     `yaml:"iterations"`
	Rate       float64 `yaml:"rate"`
	Alpha      float64 `yaml:"alpha"`
	Mu         float64 `yaml:"mu"`
	Sample     bool    `yaml:"sample"`
	Samples    int     `yaml:"samples"`
	Tolerance  float64 `yaml:"tolerance"`
	BiasTerm   bool    `yaml:"bias_term"`
	Sparse     bool    `yaml:"sparse"`
	WarmStart  bool    `yaml:"warm_start"`
	Verbose    bool    `yaml:"verbose"`
	Seed       uint64  `yaml:"seed"`
}

// TrainConfig converts the file settings to learner settings.
func (c NoiseAwareConfig) TrainConfig() noiseaware.TrainConfig {
	tc := noiseaware.DefaultTrainConfig()
	tc.Iterations = c.Iterations
	tc.Rate = c.Rate
	tc.Alpha = c.Alpha
	tc.Mu = c.Mu
	tc.Sample = c.Sample
	tc.Samples = c.Samples
	tc.Tolerance = c.Tolerance
	tc.Seed = c.Seed
	tc.WarmStart = c.WarmStart
	tc.Verbose = c.Verbose
	return tc
}

// Default returns the built-in settings.
func Default() Config {
	na := noiseaware.DefaultTrainConfig()
	return Config{
		Generative: genmodel.DefaultConfig(),
		Sampler:    gibbs.DefaultConfig(),
		NoiseAware: NoiseAwareConfig{
			Iterations: na.Iterations,
			Rate:       na.Rate,
			Alpha:      na.Alpha,
			Mu:         na.Mu,
			Sample:     na.Sample,
			Samples:    na.Samples,
			Tolerance:  na.Tolerance,
			Seed:       na.Seed,
		},
	}
}

// Load reads path over the defaults; keys missing from the file keep their
// default values. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no learner can run with.
func (c Config) Validate() error {
	if c.Generative.Epochs < 0 {
		return fmt.Errorf("generative.epochs must not be negative")
	}
	if c.NoiseAware.Alpha < 0 || c.NoiseAware.Alpha > 1 {
		return fmt.Errorf("noise_aware.alpha must be in [0, 1], got %v", c.NoiseAware.Alpha)
	}
	if c.NoiseAware.Sample && c.NoiseAware.Samples <= 0 {
		return fmt.Errorf("noise_aware.samples must be positive when sampling")
	}
	return nil
}
