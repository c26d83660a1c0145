// Package config reads and writes jackc.toml.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// FileName is the config file looked up in the working directory.
const FileName = "jackc.toml"

type Config struct {
	Compiler    CompilerConfig    `toml:"compiler"`
	Log         LogConfig         `toml:"log"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

type CompilerConfig struct {
	OutputDir string `toml:"output_dir"` // empty: next to each source file
	Trace     bool   `toml:"trace"`      // also write <Class>.xml
	Verify    bool   `toml:"verify"`     // check every generated listing
}

type LogConfig struct {
	Level string `toml:"level"`
}

type DiagnosticsConfig struct {
	Color bool `toml:"color"`
}

func Default() *Config {
	return &Config{
		Compiler:    CompilerConfig{Verify: true},
		Log:         LogConfig{Level: "info"},
		Diagnostics: DiagnosticsConfig{Color: true},
	}
}

// Load reads the config at path. Keys missing from the file keep their default
// value, a missing file gives the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if _, err := cfg.LogLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, replacing any existing file.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (cfg *Config) LogLevel() (logrus.Level, error) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	return level, nil
}
