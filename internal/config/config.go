// Package config loads the YAML configuration of the command line tool.
package config

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/source"
)

// DefaultMaxCallDepth is the call depth at which scripts fail with a stack
// overflow.
const DefaultMaxCallDepth = 200

// Config is the configuration of the command line tool.
type Config struct {
	Engine Engine         `yaml:"engine"`
	Source source.Options `yaml:"source"`
	Log    Log            `yaml:"log"`
}

// Engine configures the script engine.
type Engine struct {
	// MaxCallDepth limits nested function calls.
	MaxCallDepth int `yaml:"max_call_depth"`
	// WorkingDirectory is the directory dofile and script paths are
	// resolved against. Empty means the current directory.
	WorkingDirectory string `yaml:"working_directory"`
}

// Log configures diagnostic output.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Engine: Engine{
			MaxCallDepth: DefaultMaxCallDepth,
		},
		Source: source.DefaultOptions(),
		Log: Log{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the configuration file at path. Keys missing from the file keep
// their default values.
func Load(fs afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Engine.MaxCallDepth <= 0 {
		return Config{}, fmt.Errorf("parse config: max_call_depth must be positive, got %d", cfg.Engine.MaxCallDepth)
	}
	return cfg, nil
}
