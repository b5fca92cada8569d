// Package config holds the ambient run configuration for stmmcmc: log
// level/format, default worker count, default batch sizing, and the
// default output destination. Values layer as defaults, then the YAML
// file, then environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the ambient configuration for one stmmcmc invocation.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Sampler SamplerConfig `yaml:"sampler"`
	Output  OutputConfig  `yaml:"output"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SamplerConfig holds default tunables applied when a run doesn't
// override them on the command line.
type SamplerConfig struct {
	Workers        int `yaml:"workers"`
	TargetInterval int `yaml:"target_interval"`
	OutputBuffer   int `yaml:"output_buffer"`
}

// OutputConfig controls where posterior samples, checkpoints, and DIC
// summaries land.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	Sink string `yaml:"sink"`
}

// DefaultConfig returns the out-of-the-box configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Sampler: SamplerConfig{
			Workers:        8,
			TargetInterval: 1,
			OutputBuffer:   500,
		},
		Output: OutputConfig{
			Dir:  "./output",
			Sink: "csv",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults if
// path doesn't exist. Environment variables are expanded in the file
// content before parsing, and STMMCMC_LOG_LEVEL overrides the parsed
// logging level if set.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "stmmcmc.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	logLevelEnv, logLevelEnvSet := os.LookupEnv("STMMCMC_LOG_LEVEL")

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if logLevelEnvSet {
		cfg.Logging.Level = logLevelEnv
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	if c.Sampler.Workers < 1 {
		return fmt.Errorf("sampler.workers must be at least 1")
	}
	if c.Sampler.TargetInterval < 1 {
		return fmt.Errorf("sampler.target_interval must be at least 1")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	return nil
}
