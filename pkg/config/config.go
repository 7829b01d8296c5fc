// Package config loads budgetbubbles settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/budgetbubbles/config.toml (or
// ~/.config/budgetbubbles/config.toml). A missing file yields [Default];
// keys absent from the file keep their defaults. Command-line flags
// override file values.
//
//	[layout]
//	iterations = 300
//
//	[store]
//	backend = "sqlite"
//	path = "/var/lib/budgetbubbles/states.db"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "budgetbubbles"

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds all settings.
type Config struct {
	Layout  LayoutConfig  `toml:"layout"`
	Display DisplayConfig `toml:"display"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
}

// LayoutConfig sizes the canvases and caps the force simulation.
type LayoutConfig struct {
	PanelWidth       float64 `toml:"panel_width"`
	PanelHeight      float64 `toml:"panel_height"`
	ComparisonWidth  float64 `toml:"comparison_width"`
	ComparisonHeight float64 `toml:"comparison_height"`
	Iterations       int     `toml:"iterations"`
}

// DisplayConfig picks the initial language.
type DisplayConfig struct {
	Language string `toml:"language"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend  string        `toml:"backend"` // "file", "redis", "none"
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"` // caps entry lifetime; 0 keeps the per-stage TTLs
}

// StoreConfig selects where saved states live.
type StoreConfig struct {
	Backend  string `toml:"backend"` // "file", "sqlite", "mongo"
	Path     string `toml:"path"`    // directory (file) or database file (sqlite)
	URI      string `toml:"uri"`     // mongo connection string
	Database string `toml:"database"`
}

// ServerConfig configures `budgetbubbles serve`.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	DatasetDir  string   `toml:"dataset_dir"`
	Metrics     bool     `toml:"metrics"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			PanelWidth:       600,
			PanelHeight:      600,
			ComparisonWidth:  1200,
			ComparisonHeight: 300,
			Iterations:       200,
		},
		Cache: CacheConfig{Backend: CacheFile, Dir: filepath.Join(cacheHome(), AppName), TTL: 7 * 24 * time.Hour},
		Store: StoreConfig{Backend: StoreFile, Path: filepath.Join(dataHome(), AppName, "states"), Database: AppName},
		Server: ServerConfig{
			Addr:       "127.0.0.1:8080",
			DatasetDir: "datasets",
			Metrics:    true,
		},
	}
}

// Dir returns the config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

func cacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

// Load reads path over the defaults. An empty path means [Path]. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if err := bberrors.ValidateFormat(c.Store.Backend, []string{StoreFile, StoreSQLite, StoreMongo}); err != nil {
		return bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "store.backend")
	}
	if err := bberrors.ValidateFormat(c.Cache.Backend, []string{CacheFile, CacheRedis, CacheNone}); err != nil {
		return bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "cache.backend")
	}
	if err := bberrors.ValidateLanguage(c.Display.Language); err != nil {
		return err
	}
	if c.Layout.Iterations < 0 {
		return bberrors.New(bberrors.ErrCodeInvalidInput, "layout.iterations must not be negative")
	}
	return nil
}
