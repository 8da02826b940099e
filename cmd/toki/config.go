package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration for the CLI and server.
// Flags override file values. A file value stands in for the matching flag
// in ephemeris resolution: ephemeris_path beats $TOKI_EPHEMERIS_PATH, and
// ephemeris beats $TOKI_EPHEMERIS but not $TOKI_EPHEMERIS_PATH.
type fileConfig struct {
	Ephemeris     string  `yaml:"ephemeris"`
	EphemerisPath string  `yaml:"ephemeris_path"`
	Lat           float64 `yaml:"lat"`
	Lon           float64 `yaml:"lon"`
	Addr          string  `yaml:"addr"`
}

// loadConfig reads the config file if present. A missing default file is
// fine; a named file that cannot be read is an error.
func loadConfig(path string, explicit bool) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
