package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigLoader defines the interface for loading configuration files
type ConfigLoader interface {
	// LoadConfig loads the jitdiff configuration from a YAML file
	LoadConfig(path string) (*JitDiffConfig, error)
	// ValidateConfig validates the jitdiff configuration
	ValidateConfig(config *JitDiffConfig) error
}

// Loader handles loading configuration files
type Loader struct{}

// Ensure Loader implements ConfigLoader
var _ ConfigLoader = (*Loader)(nil)

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadConfig loads the configuration from a YAML file.
// Keys missing from the file keep their DefaultConfig values.
func (l *Loader) LoadConfig(path string) (*JitDiffConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jitdiff config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse jitdiff config: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func (l *Loader) ValidateConfig(config *JitDiffConfig) error {
	if config.MaxMethods < 0 {
		return fmt.Errorf("maxMethods must not be negative, got %d", config.MaxMethods)
	}
	if config.MaxReportBytes <= 0 {
		return fmt.Errorf("maxReportBytes must be positive, got %d", config.MaxReportBytes)
	}
	if config.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", config.Concurrency)
	}
	if config.DiffContextLines < 0 {
		return fmt.Errorf("diffContextLines must not be negative, got %d", config.DiffContextLines)
	}

	for i, pattern := range config.KnownNoise {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("knownNoise[%d]: pattern is empty", i)
		}
	}

	return nil
}
