package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrUnknownCatalog = errors.New("unknown catalog source")
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Catalog sources.
const (
	CatalogMock = "mock"
	CatalogDir  = "dir"
	CatalogHTTP = "http"
)

// StoreConfig holds configuration for the WatchStore service
type StoreConfig struct {
	Port     string `json:"port" yaml:"port"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	Backend     string      `json:"backend" yaml:"backend"`
	DataDir     string      `json:"data_dir" yaml:"data_dir"`
	DatabaseURL string      `json:"database_url" yaml:"database_url"`
	Profile     string      `json:"profile" yaml:"profile"`
	Redis       RedisConfig `json:"redis" yaml:"redis"`

	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`

	PersistDebounce Duration `json:"persist_debounce" yaml:"persist_debounce"`
	WatchdogIdle    Duration `json:"watchdog_idle" yaml:"watchdog_idle"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type CatalogConfig struct {
	Source  string   `json:"source" yaml:"source"`
	URL     string   `json:"url" yaml:"url"`
	Dir     string   `json:"dir" yaml:"dir"`
	BaseURL string   `json:"base_url" yaml:"base_url"`
	Delay   Duration `json:"delay" yaml:"delay"`
}

// Duration accepts "1s"-style strings in YAML and JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns the configuration used when nothing is set.
func Default() StoreConfig {
	return StoreConfig{
		Port:         "8080",
		LogLevel:     "info",
		Backend:      BackendFile,
		DataDir:      "data",
		Profile:      "local",
		Redis:        RedisConfig{Addr: "localhost:6379"},
		Catalog:      CatalogConfig{Source: CatalogMock, Delay: Duration(time.Second)},
		WatchdogIdle: Duration(30 * time.Second),
	}
}

// LoadStore builds the service configuration: defaults, then the optional
// file at path, then WATCHSTORE_* environment overrides.
func LoadStore(path string) (StoreConfig, error) {
	cfg := Default()
	if path != "" {
		if err := Load(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *StoreConfig, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		v, ok := lookup(name)
		if !ok || v == "" {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	str("WATCHSTORE_PORT", &cfg.Port)
	str("WATCHSTORE_LOG_LEVEL", &cfg.LogLevel)
	str("WATCHSTORE_BACKEND", &cfg.Backend)
	str("WATCHSTORE_DATA_DIR", &cfg.DataDir)
	str("WATCHSTORE_DATABASE_URL", &cfg.DatabaseURL)
	str("WATCHSTORE_PROFILE", &cfg.Profile)
	str("WATCHSTORE_REDIS_ADDR", &cfg.Redis.Addr)
	str("WATCHSTORE_REDIS_PASSWORD", &cfg.Redis.Password)
	str("WATCHSTORE_CATALOG_SOURCE", &cfg.Catalog.Source)
	str("WATCHSTORE_CATALOG_URL", &cfg.Catalog.URL)
	str("WATCHSTORE_CATALOG_DIR", &cfg.Catalog.Dir)
	str("WATCHSTORE_CATALOG_BASE_URL", &cfg.Catalog.BaseURL)

	if v, ok := lookup("WATCHSTORE_REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WATCHSTORE_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if err := dur("WATCHSTORE_CATALOG_DELAY", &cfg.Catalog.Delay); err != nil {
		return err
	}
	if err := dur("WATCHSTORE_PERSIST_DEBOUNCE", &cfg.PersistDebounce); err != nil {
		return err
	}
	return dur("WATCHSTORE_WATCHDOG_IDLE", &cfg.WatchdogIdle)
}

// Validate checks that the selected backend and catalog source have what
// they need.
func (c StoreConfig) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	case BackendFile, BackendSQLite, BackendBadger:
		if c.DataDir == "" {
			return fmt.Errorf("backend %q requires data_dir", c.Backend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("backend %q requires database_url", c.Backend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	switch c.Catalog.Source {
	case CatalogMock:
	case CatalogDir:
		if c.Catalog.Dir == "" {
			return errors.New("catalog source \"dir\" requires catalog.dir")
		}
	case CatalogHTTP:
		if c.Catalog.URL == "" {
			return errors.New("catalog source \"http\" requires catalog.url")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCatalog, c.Catalog.Source)
	}

	if c.PersistDebounce < 0 || c.WatchdogIdle < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// Load loads the configuration from a file (YAML or JSON)
func Load(path string, cfg interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return fmt.Errorf("failed to decode YAML config file %s: %w", path, err)
		}
		return nil
	}
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode JSON config file %s: %w", path, err)
	}
	return nil
}
