// Package config loads and persists the TOML configuration, following XDG
// conventions for config and data locations.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/notefern/cardindex/pkg/content"
)

//go:embed config.toml.sample
var configTemplate string

type Config struct {
	StorageDir string        `toml:"storage_dir"`
	Scan       ScanConfig    `toml:"scan"`
	Filter     FilterConfig  `toml:"filter"`
	Segment    SegmentConfig `toml:"segment"`
}

// ScanConfig controls the filesystem indexer.
type ScanConfig struct {
	// Roots are the directories to walk. Empty means the platform
	// defaults (home subfolders).
	Roots []string `toml:"roots"`
	// Excludes are extra glob patterns skipped during walks, on top of
	// the built-in list.
	Excludes []string `toml:"excludes"`
	// FileTimeout bounds extraction of a single file.
	FileTimeout Duration `toml:"file_timeout"`
	// MaxFileSize in bytes; larger files are skipped. Zero means 64MB.
	MaxFileSize int64 `toml:"max_file_size"`
}

// FilterConfig overrides text-plausibility thresholds. Zero values keep
// the defaults.
type FilterConfig struct {
	MinLength       int     `toml:"min_length"`
	MaxLength       int     `toml:"max_length"`
	MaxDigitRatio   float64 `toml:"max_digit_ratio"`
	MaxSpecialRatio float64 `toml:"max_special_ratio"`
}

// Policy resolves the configured overrides against the default policy.
func (f FilterConfig) Policy() content.FilterPolicy {
	p := content.DefaultFilterPolicy()
	if f.MinLength > 0 {
		p.MinLength = f.MinLength
	}
	if f.MaxLength > 0 {
		p.MaxLength = f.MaxLength
	}
	if f.MaxDigitRatio > 0 {
		p.MaxDigitRatio = f.MaxDigitRatio
	}
	if f.MaxSpecialRatio > 0 {
		p.MaxSpecialRatio = f.MaxSpecialRatio
	}
	return p
}

// SegmentConfig points at an optional user dictionary overlaid on the
// embedded one. Lines are "word frequency".
type SegmentConfig struct {
	UserDictionary string `toml:"user_dictionary"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	return &Config{
		StorageDir: storageDir,
		Scan: ScanConfig{
			FileTimeout: Duration{30 * time.Second},
		},
	}, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}
	if config.Scan.FileTimeout.Duration == 0 {
		config.Scan.FileTimeout = Duration{30 * time.Second}
	}
	return &config, nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the annotated sample config with the storage
// directory filled in.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return fmt.Errorf("getting default storage directory: %w", err)
		}
	}
	template := strings.Replace(configTemplate, "/home/user/.local/share/cardindex", storageDir, 1)
	return os.WriteFile(configPath, []byte(template), 0644)
}

// DBPath returns the card database path under the storage directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageDir, "cards.db")
}

// GetDefaultStorageDir returns (creating if needed) the XDG data directory
// for the index database.
func GetDefaultStorageDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "cardindex")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetConfigDir returns the XDG config directory.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "cardindex"), nil
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
