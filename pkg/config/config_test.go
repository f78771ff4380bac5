package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.MaxLimit != 64 || cfg.Server.MinPattern != 1 || cfg.Server.MaxPattern != 60 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Index.Paged {
		t.Error("paged mode should default to off")
	}
	if cfg.CLI.DefaultLimit != 24 {
		t.Errorf("unexpected CLI defaults: %+v", cfg.CLI)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Index.Paged = true
	cfg.Index.PageDir = "/var/tmp"
	cfg.Server.MaxLimit = 128

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !loaded.Index.Paged || loaded.Index.PageDir != "/var/tmp" {
		t.Errorf("index section lost: %+v", loaded.Index)
	}
	if loaded.Server.MaxLimit != 128 {
		t.Errorf("server section lost: %+v", loaded.Server)
	}
}

func TestInitConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if cfg.Server.MaxLimit != 64 {
		t.Errorf("expected defaults, got %+v", cfg.Server)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	// max_limit has the wrong type; the rest of the file is fine and must
	// survive the reload.
	broken := `
[server]
max_limit = "lots"
min_pattern = 3

[index]
paged = true
`
	if err := os.WriteFile(path, []byte(broken), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.MaxLimit != 64 {
		t.Errorf("bad value should fall back to default, got %d", cfg.Server.MaxLimit)
	}
	if cfg.Server.MinPattern != 3 {
		t.Errorf("valid value lost in recovery, got %d", cfg.Server.MinPattern)
	}
	if !cfg.Index.Paged {
		t.Error("valid section lost in recovery")
	}
}
