// Package config loads server settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/coliovacruz/nmap-mcp-server/pkg/types"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	DefaultBind = "localhost:8990"
)

// Config holds the server settings. Command-line flags override file values.
type Config struct {
	// Executable is the nmap binary, resolved on PATH when not absolute.
	Executable string `yaml:"executable" validate:"required"`
	Transport  string `yaml:"transport" validate:"oneof=stdio http"`
	Bind       string `yaml:"bind" validate:"omitempty,hostname_port"`
	// ScanTimeout bounds a single scanner run. Zero means no limit.
	ScanTimeout time.Duration `yaml:"scan_timeout" validate:"min=0"`
	// RequireExecutable makes startup fail when the executable is missing.
	RequireExecutable bool `yaml:"require_executable"`
	Debug             bool `yaml:"debug"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Executable: types.DefaultExecutable,
		Transport:  TransportStdio,
		Bind:       DefaultBind,
	}
}

// Load reads path on top of the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}
