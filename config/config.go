// Package config loads tunable emulator settings from a TOML document,
// layered over a set of defaults that reproduce the machine's documented
// behavior when no config file is present.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds everything about a run that is not fixed by the memory
// layout or instruction semantics.
type Config struct {
	Execution struct {
		MaxCycles uint64 `toml:"max_cycles"` // 0 means unbounded
		StackSize uint32 `toml:"stack_size"` // loaded and defaulted; the memory model does not read it
		Trace     bool   `toml:"trace"`
		IOMode    string `toml:"io_mode"` // "syscall" or "mmio"
	} `toml:"execution"`

	Output struct {
		Format string `toml:"format"` // "text" or "json"
	} `toml:"output"`
}

// DefaultConfig returns the configuration an emulator run uses when no
// config file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Execution.MaxCycles = 10_000_000
	cfg.Execution.StackSize = 1 << 20 // 1 MiB
	cfg.Execution.Trace = false
	cfg.Execution.IOMode = "syscall"
	cfg.Output.Format = "text"
	return cfg
}

// GetConfigPath returns the per-user config file path, creating its
// directory on first use. When no per-user config directory can be
// resolved or created, the file lives in the working directory instead.
func GetConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	dir := filepath.Join(base, "mipsgo")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads the per-user config file, if one exists.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom merges the TOML document at path over DefaultConfig field by
// field. A missing file is not an error; the defaults come back as-is.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Execution.StackSize == 0 {
		cfg.Execution.StackSize = DefaultConfig().Execution.StackSize
	}
	return cfg, nil
}

// Save writes the configuration back to the per-user config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes the configuration as TOML to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
