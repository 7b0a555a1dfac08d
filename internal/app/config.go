package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // hcl files: graph declaration
	TypesPath string // hcl files: node_type manifests

	LogFormat    string
	LogLevel     string
	RelaxedFanIn bool
	SnapshotPath string // when set, Run writes the built graph here
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
