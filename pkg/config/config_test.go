package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StorageDir == "" {
		t.Error("expected default storage dir")
	}
	if cfg.Scan.FileTimeout.Duration != 30*time.Second {
		t.Errorf("expected default file timeout, got %v", cfg.Scan.FileTimeout)
	}
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := GetDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Scan.Roots = []string{"/docs", "/notes"}
	cfg.Scan.Excludes = []string{"*.bak"}
	cfg.Scan.FileTimeout = Duration{10 * time.Second}
	cfg.Filter.MinLength = 3

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Scan.Roots) != 2 || loaded.Scan.Roots[0] != "/docs" {
		t.Errorf("roots lost: %v", loaded.Scan.Roots)
	}
	if loaded.Scan.FileTimeout.Duration != 10*time.Second {
		t.Errorf("timeout lost: %v", loaded.Scan.FileTimeout)
	}
	if loaded.Filter.MinLength != 3 {
		t.Errorf("filter override lost: %d", loaded.Filter.MinLength)
	}
}

func TestFilterPolicyOverrides(t *testing.T) {
	f := FilterConfig{MinLength: 5, MaxDigitRatio: 0.5}
	p := f.Policy()
	if p.MinLength != 5 {
		t.Errorf("min length not applied: %d", p.MinLength)
	}
	if p.MaxDigitRatio != 0.5 {
		t.Errorf("digit ratio not applied: %f", p.MaxDigitRatio)
	}
	if p.MaxLength != 200 {
		t.Errorf("unset fields should keep defaults: %d", p.MaxLength)
	}
}

func TestSaveTemplateFillsStorageDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := GetDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); !strings.Contains(got, cfg.StorageDir) {
		t.Errorf("template missing storage dir %q", cfg.StorageDir)
	}
}
