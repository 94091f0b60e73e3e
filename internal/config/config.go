// Package config loads quicklists settings from a YAML file with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/AntohaY/quicklists/internal/store"
)

const (
	EnvConfigDir = "QUICKLISTS_CONFIG_DIR"
	EnvDir       = "QUICKLISTS_DIR"
	EnvBackend   = "QUICKLISTS_BACKEND"
	EnvRedisAddr = "QUICKLISTS_REDIS_ADDR"
	EnvRedisDB   = "QUICKLISTS_REDIS_DB"
	EnvLogLevel  = "QUICKLISTS_LOG_LEVEL"
)

type Config struct {
	// Dir holds the data files. Empty means DefaultDir().
	Dir     string      `yaml:"dir" json:"dir"`
	Backend string      `yaml:"backend" json:"backend"` // sqlite, file, redis or memory
	Redis   RedisConfig `yaml:"redis" json:"redis"`
	Logging LogConfig   `yaml:"logging" json:"logging"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	Password  string `yaml:"password" json:"password,omitempty"`
	DB        int    `yaml:"db" json:"db"`
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text or json
	// File receives log output. Empty means stderr for commands and no logging in
	// the TUI.
	File string `yaml:"file" json:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: string(store.BackendSQLite),
		Redis: RedisConfig{
			KeyPrefix: "quicklists:",
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigDir is $QUICKLISTS_CONFIG_DIR, or ~/.quicklists.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".quicklists"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultDir is where data lives when nothing else is configured.
func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// Load reads path on top of DefaultConfig and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDir); v != "" {
		c.Dir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		c.Redis.DB = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// StoreOptions resolves the backend settings, filling in DefaultDir when Dir is
// unset.
func (c *Config) StoreOptions() (store.Options, error) {
	dir := c.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return store.Options{}, err
		}
		dir = d
	}
	return store.Options{
		Kind:           store.BackendKind(c.Backend),
		Dir:            dir,
		RedisAddr:      c.Redis.Addr,
		RedisPassword:  c.Redis.Password,
		RedisDB:        c.Redis.DB,
		RedisKeyPrefix: c.Redis.KeyPrefix,
	}, nil
}
