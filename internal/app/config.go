package app

import "errors"

// DefaultConfigPath is the configuration file used when none is given.
const DefaultConfigPath = "dllforge.hcl"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
