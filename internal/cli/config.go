package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file. Flags given on the
// command line take precedence over values read from it.
type Config struct {
	Validator struct {
		Path       string   `yaml:"path"`
		Args       []string `yaml:"args"`
		OutputFlag string   `yaml:"output_flag"`
	} `yaml:"validator"`

	// Pattern extracts the rule code from a diagnostic message; the
	// first capture group is the code.
	Pattern string `yaml:"pattern"`

	// Severities lists the severities folded into fingerprints.
	Severities []string `yaml:"severities"`

	Workers int    `yaml:"workers"`
	History string `yaml:"history"`
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
