package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wsprobe/internal/models"
	"wsprobe/internal/probe"
)

// Config represents configuration data for the probing service.
type Config struct {
	IntervalSeconds int             `yaml:"interval_seconds"`
	DataDirectory   string          `yaml:"data_directory"`
	Targets         []models.Target `yaml:"targets"`
}

// DefaultConfig returns sensible defaults in case no configuration file is provided.
func DefaultConfig() Config {
	return Config{
		IntervalSeconds: 60,
		DataDirectory:   filepath.Join(".dist", "data"),
		Targets: []models.Target{
			{
				ID:             "local",
				Name:           "Local WebSocket",
				URL:            probe.DefaultEndpoint,
				Payload:        probe.DefaultPayload,
				TimeoutSeconds: 10,
			},
		},
	}
}

// Load reads configuration from yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.IntervalSeconds <= 0 {
		cfg.IntervalSeconds = 60
	}
	if cfg.DataDirectory == "" {
		cfg.DataDirectory = DefaultConfig().DataDirectory
	}
	if len(cfg.Targets) == 0 {
		return Config{}, errors.New("configuration must define at least one target")
	}
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.URL == "" {
			return Config{}, fmt.Errorf("target %d is missing url", i)
		}
		if t.ID == "" {
			return Config{}, fmt.Errorf("target %d is missing id", i)
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		if t.Payload == "" {
			t.Payload = probe.DefaultPayload
		}
	}
	return cfg, nil
}
