package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/holtzmann/mipsgo/interp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.MaxCycles != 10_000_000 {
		t.Errorf("Expected MaxCycles=10000000, got %d", cfg.Execution.MaxCycles)
	}
	if cfg.Execution.StackSize != 1<<20 {
		t.Errorf("Expected StackSize=1MiB, got %d", cfg.Execution.StackSize)
	}
	if cfg.Execution.Trace {
		t.Error("Expected Trace=false")
	}
	if cfg.Execution.IOMode != "syscall" {
		t.Errorf("Expected IOMode=syscall, got %s", cfg.Execution.IOMode)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected Format=text, got %s", cfg.Output.Format)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "mipsgo" && path != "config.toml" {
			t.Errorf("Expected path in mipsgo directory or fallback, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxCycles = 5_000_000
	cfg.Execution.Trace = true
	cfg.Execution.IOMode = "mmio"
	cfg.Output.Format = "json"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Execution.MaxCycles != 5_000_000 {
		t.Errorf("Expected MaxCycles=5000000, got %d", loaded.Execution.MaxCycles)
	}
	if !loaded.Execution.Trace {
		t.Error("Expected Trace=true")
	}
	if loaded.Execution.IOMode != "mmio" {
		t.Errorf("Expected IOMode=mmio, got %s", loaded.Execution.IOMode)
	}
	if loaded.Output.Format != "json" {
		t.Errorf("Expected Format=json, got %s", loaded.Output.Format)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Execution.MaxCycles != 10_000_000 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[execution]
max_cycles = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestLoadZeroStackSizeFallsBackToDefault(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "partial.toml")

	partial := `
[execution]
max_cycles = 42
`
	if err := os.WriteFile(configPath, []byte(partial), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Execution.MaxCycles != 42 {
		t.Errorf("Expected MaxCycles=42, got %d", cfg.Execution.MaxCycles)
	}
	if cfg.Execution.StackSize != DefaultConfig().Execution.StackSize {
		t.Errorf("Expected default StackSize when omitted, got %d", cfg.Execution.StackSize)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Execution.IOMode = "mmio"
	cfg.Execution.MaxCycles = 123

	it := interp.NewInterpreter(nil, nil)
	if err := cfg.Apply(it); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if it.IOMode != interp.IOMMIO {
		t.Errorf("Expected IOMode=IOMMIO, got %v", it.IOMode)
	}
	if it.MaxCycles != 123 {
		t.Errorf("Expected MaxCycles=123, got %d", it.MaxCycles)
	}
}

func TestApplyRejectsUnknownIOMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Execution.IOMode = "bogus"

	it := interp.NewInterpreter(nil, nil)
	if err := cfg.Apply(it); err == nil {
		t.Error("Expected error for unrecognised io_mode")
	}
}
