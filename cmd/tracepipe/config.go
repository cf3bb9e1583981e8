package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the tracepipe configuration file
// (~/.config/tracepipe/config.yaml). All values are optional; CLI flags
// that were set explicitly win over the file.
type Config struct {
	// Output
	TraceDir      string `yaml:"trace_dir"`
	BlockCapacity int    `yaml:"block_capacity"`
	QueueSize     int    `yaml:"queue_size"`

	// Server
	ServerAddress string `yaml:"server_address"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tracepipe", "config.yaml")
}

// loadConfig reads the configuration file if present. A missing file is
// not an error; a malformed one is.
func loadConfig() (Config, error) {
	var cfg Config
	path := configPath()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
