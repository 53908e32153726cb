package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the application configuration. An empty path
// falls back to config.yml in the working directory; a missing file yields
// the built-in defaults.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path == "" {
		path = "config.yml"
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyDefaults(&cfg)

	v := validator.New()
	if err := v.Struct(cfg.Server); err != nil {
		return nil, err
	}
	for _, s := range cfg.Stations {
		if err := v.Struct(s); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "transit.db"
	}
	if cfg.Proto.Dir == "" {
		cfg.Proto.Dir = "proto"
	}
	if len(cfg.Stations) == 0 {
		cfg.Stations = DefaultStations
	}
}
