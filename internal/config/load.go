package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults overlaid with the YAML
// file at path. A missing file is not an error; explicit paths that
// fail to parse are.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = "./config.yaml"
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// loadFromFile merges a YAML file over the existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
