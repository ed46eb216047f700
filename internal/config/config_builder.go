package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
)

// Overrides carries configuration values supplied on the command line.
// They take priority over every other source.
type Overrides struct {
	ConfigPath string
	DBPath     string
	Debug      bool
}

type configBuilder struct {
	configs []*Config
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*Config, 0, 4),
	}
}

// build merges the collected layers in priority order (earliest wins) and
// validates the result.
func (b *configBuilder) build() (*Config, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(Config)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withOverrides(o Overrides) *configBuilder {
	b.configs = append(b.configs, &Config{
		App:          App{Debug: o.Debug},
		Storage:      Storage{DB: DB{Path: o.DBPath}},
		JSONFilePath: o.ConfigPath,
	})
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &Config{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	jsonPath := ""
	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
			break
		}
	}
	if jsonPath == "" {
		jsonPath = DefaultJSONPath()
	}

	if jsonPath != "" {
		jsonCfg, err := parseJSON(jsonPath)
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		b.configs = append(b.configs, jsonCfg)
	}

	return b
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, defaults())
	return b
}

// Load assembles the effective configuration from command-line overrides,
// environment variables, an optional JSON file, and built-in defaults.
func Load(o Overrides) (*Config, error) {
	return newConfigBuilder().
		withOverrides(o).
		withEnv().
		withJSON().
		withDefaults().
		build()
}
